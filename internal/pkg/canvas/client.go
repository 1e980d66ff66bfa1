package canvas

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tomnomnom/linkheader"

	"github.com/talberry/sdsu-study-bot/internal/config"
	model "github.com/talberry/sdsu-study-bot/internal/model/canvas"
	"github.com/talberry/sdsu-study-bot/internal/pkg/cache"
)

// DefaultBaseURL public Canvas API root
const DefaultBaseURL = "https://canvas.instructure.com/api/v1"

const (
	defaultTimeout = 30 * time.Second
	// defaultMaxPages bounds Link-header pagination per collection request
	defaultMaxPages = 10
)

// SnapshotCache stores raw Canvas bodies. Implemented by cache.RedisCache.
type SnapshotCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, data []byte, expiration time.Duration) error
}

// Client Canvas REST client bound to one access token.
// Built per request; never shared across users.
type Client struct {
	token      string
	baseURL    *url.URL
	perPage    int
	maxPages   int
	httpClient *http.Client
	cache      SnapshotCache
	cacheTTL   time.Duration
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient overrides the transport (tests, shared pools)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMaxPages overrides the pagination bound; n < 1 is ignored
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithCache enables snapshot caching for ttl
func WithCache(sc SnapshotCache, ttl time.Duration) Option {
	return func(c *Client) {
		if sc != nil && ttl > 0 {
			c.cache = sc
			c.cacheTTL = ttl
		}
	}
}

// NewClient creates a Canvas client for token
func NewClient(token string, cfg *config.CanvasConfig, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	raw := DefaultBaseURL
	timeout := defaultTimeout
	perPage := 0
	if cfg != nil {
		if cfg.BaseURL != "" {
			raw = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		perPage = cfg.PerPage
	}

	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse canvas base url: %w", err)
	}

	c := &Client{
		token:      token,
		baseURL:    base,
		perPage:    perPage,
		maxPages:   defaultMaxPages,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetCourses lists the user's active courses
func (c *Client) GetCourses(ctx context.Context) ([]model.Course, error) {
	q := url.Values{}
	q.Set("enrollment_state", "active")
	return getList[model.Course](ctx, c, "/courses", q)
}

// GetCourse fetches one course
func (c *Client) GetCourse(ctx context.Context, courseID int64) (*model.Course, error) {
	return getOne[model.Course](ctx, c, fmt.Sprintf("/courses/%d", courseID))
}

// GetModules lists course modules with their items inlined
func (c *Client) GetModules(ctx context.Context, courseID int64) ([]model.Module, error) {
	q := url.Values{}
	q.Add("include[]", "items")
	return getList[model.Module](ctx, c, fmt.Sprintf("/courses/%d/modules", courseID), q)
}

// GetModule fetches one module
func (c *Client) GetModule(ctx context.Context, courseID, moduleID int64) (*model.Module, error) {
	return getOne[model.Module](ctx, c, fmt.Sprintf("/courses/%d/modules/%d", courseID, moduleID))
}

// GetModuleItems lists the items of a module
func (c *Client) GetModuleItems(ctx context.Context, courseID, moduleID int64) ([]model.ModuleItem, error) {
	return getList[model.ModuleItem](ctx, c, fmt.Sprintf("/courses/%d/modules/%d/items", courseID, moduleID), nil)
}

// GetAssignments lists course assignments
func (c *Client) GetAssignments(ctx context.Context, courseID int64) ([]model.Assignment, error) {
	return getList[model.Assignment](ctx, c, fmt.Sprintf("/courses/%d/assignments", courseID), nil)
}

// GetAssignment fetches one assignment
func (c *Client) GetAssignment(ctx context.Context, courseID, assignmentID int64) (*model.Assignment, error) {
	return getOne[model.Assignment](ctx, c, fmt.Sprintf("/courses/%d/assignments/%d", courseID, assignmentID))
}

// GetQuizzes lists course quizzes
func (c *Client) GetQuizzes(ctx context.Context, courseID int64) ([]model.Quiz, error) {
	return getList[model.Quiz](ctx, c, fmt.Sprintf("/courses/%d/quizzes", courseID), nil)
}

// GetQuiz fetches one quiz
func (c *Client) GetQuiz(ctx context.Context, courseID, quizID int64) (*model.Quiz, error) {
	return getOne[model.Quiz](ctx, c, fmt.Sprintf("/courses/%d/quizzes/%d", courseID, quizID))
}

// GetPages lists course pages (bodies are omitted by Canvas)
func (c *Client) GetPages(ctx context.Context, courseID int64) ([]model.Page, error) {
	return getList[model.Page](ctx, c, fmt.Sprintf("/courses/%d/pages", courseID), nil)
}

// GetPage fetches a page by its url slug
func (c *Client) GetPage(ctx context.Context, courseID int64, pageURL string) (*model.Page, error) {
	return getOne[model.Page](ctx, c, fmt.Sprintf("/courses/%d/pages/%s", courseID, url.PathEscape(pageURL)))
}

// GetFiles lists course files
func (c *Client) GetFiles(ctx context.Context, courseID int64) ([]model.File, error) {
	return getList[model.File](ctx, c, fmt.Sprintf("/courses/%d/files", courseID), nil)
}

// GetFile fetches one file; files are addressable without a course
func (c *Client) GetFile(ctx context.Context, fileID int64) (*model.File, error) {
	return getOne[model.File](ctx, c, fmt.Sprintf("/files/%d", fileID))
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	body, _, err := c.get(ctx, c.resolve(path, nil))
	if err != nil {
		return nil, err
	}
	return decodeOne[T](body)
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if c.perPage > 0 {
		if query == nil {
			query = url.Values{}
		}
		query.Set("per_page", strconv.Itoa(c.perPage))
	}

	out := []T{}
	next := c.resolve(path, query)
	pages := 0
	for ; next != "" && pages < c.maxPages; pages++ {
		body, link, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}
		items, err := decodeList[T](body)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)

		next, err = c.nextPage(link)
		if err != nil {
			return nil, err
		}
	}
	if next != "" {
		log.Warn().
			Str("path", path).
			Int("pages", pages).
			Int("items", len(out)).
			Msg("canvas collection truncated at page limit")
	}
	return out, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	// path arrives escaped; keep RawPath so slugs survive round-tripping
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	if unescaped, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = unescaped
	} else {
		u.Path = c.baseURL.Path + path
		u.RawPath = ""
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// nextPage returns the rel="next" target of a Link header, refusing other hosts
func (c *Client) nextPage(link string) (string, error) {
	next := parseNextLink(link)
	if next == "" {
		return "", nil
	}
	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("parse canvas pagination link: %w", err)
	}
	if u.Host != c.baseURL.Host {
		return "", ErrForeignLink
	}
	return next, nil
}

// get issues one authenticated GET and returns body plus Link header
func (c *Client) get(ctx context.Context, target string) ([]byte, string, error) {
	cacheKey := ""
	if c.cache != nil {
		cacheKey = cache.SnapshotCacheKey(c.token, target)
		if data, ok, err := c.cache.GetBytes(ctx, cacheKey); err != nil {
			log.Debug().Err(err).Msg("canvas snapshot cache read failed")
		} else if ok {
			return data, "", nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create canvas request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("canvas request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read canvas response: %w", err)
	}

	log.Debug().
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("canvas request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			Path:       req.URL.Path,
		}
	}

	link := resp.Header.Get("Link")
	// only single-page bodies are cached so a hit never truncates a collection
	if c.cache != nil && parseNextLink(link) == "" {
		if err := c.cache.SetBytes(ctx, cacheKey, body, c.cacheTTL); err != nil {
			log.Debug().Err(err).Msg("canvas snapshot cache write failed")
		}
	}
	return body, link, nil
}

// parseNextLink extracts rel="next" from an RFC 8288 Link header
func parseNextLink(header string) string {
	for _, l := range linkheader.Parse(header).FilterByRel("next") {
		return l.URL
	}
	return ""
}
