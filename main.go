package main

import (
	"os"

	"github.com/talberry/sdsu-study-bot/cmd"
)

// @title           StudyBot API
// @version         1.0
// @description     Canvas-aware study assistant: tool-calling chat, study packs and a read-only Canvas proxy.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
