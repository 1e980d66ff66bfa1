package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talberry/sdsu-study-bot/internal/ai/agent"
	"github.com/talberry/sdsu-study-bot/internal/ai/component"
	"github.com/talberry/sdsu-study-bot/internal/ai/tools"
	"github.com/talberry/sdsu-study-bot/internal/service"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask the assistant one question from the terminal",
	Long: `Run a single conversation without starting the server.
The Canvas token is read from --token or STUDYBOT_CANVAS_TOKEN; without one,
Canvas tools report an authentication error to the model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	flags := askCmd.Flags()
	flags.String("token", "", "Canvas access token (recommend using env: STUDYBOT_CANVAS_TOKEN)")
	flags.Bool("trace", false, "print tool calls to stderr as they run")

	_ = viper.BindPFlag("canvas.token", flags.Lookup("token"))
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cm, err := component.NewChatModel(ctx, &cfg.AI)
	if err != nil {
		return fmt.Errorf("create chat model: %w", err)
	}
	runner, err := agent.NewRunner(cm, tools.NewDefaultRegistry(),
		agent.WithMaxSteps(cfg.Agent.MaxSteps),
		agent.WithToolConcurrency(cfg.Agent.ToolConcurrency),
	)
	if err != nil {
		return fmt.Errorf("create conversation runner: %w", err)
	}

	chat := service.NewChatService(runner, service.NewClientFactory(&cfg.Canvas, nil), nil)

	in := &service.ChatInput{
		Message: strings.Join(args, " "),
		Token:   viper.GetString("canvas.token"),
	}
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		in.Reporter = traceReporter(cmd)
	}

	res, err := chat.Chat(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return nil
}

func traceReporter(cmd *cobra.Command) agent.ProgressReporter {
	out := cmd.ErrOrStderr()
	return agent.ReporterFuncs{
		Started: func(e agent.ToolEvent) {
			fmt.Fprintf(out, "[step %d] %s %s\n", e.Step, e.Name, compact(e.Input))
		},
		Completed: func(e agent.ToolEvent) {
			if e.Error != "" {
				fmt.Fprintf(out, "[step %d] %s failed: %s\n", e.Step, e.Name, e.Error)
				return
			}
			fmt.Fprintf(out, "[step %d] %s done (%d bytes)\n", e.Step, e.Name, len(e.Output))
		},
	}
}

func compact(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
