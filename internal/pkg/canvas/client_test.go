package canvas

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talberry/sdsu-study-bot/internal/config"
)

// fakeCanvas serves canned bodies per path and records what it saw
type fakeCanvas struct {
	server *httptest.Server
	routes map[string]string
	status map[string]int
	links  map[string]string
	hits   atomic.Int32
	mu     sync.Mutex
	auth   []string
	urls   []string
}

func newFakeCanvas(t *testing.T) *fakeCanvas {
	f := &fakeCanvas{
		routes: map[string]string{},
		status: map[string]int{},
		links:  map[string]string{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.mu.Lock()
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.urls = append(f.urls, r.URL.String())
		f.mu.Unlock()

		if code, ok := f.status[r.URL.Path]; ok {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"errors":[{"message":"nope"}]}`))
			return
		}
		body, ok := f.routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"message":"The specified resource does not exist."}]}`))
			return
		}
		if link, ok := f.links[r.URL.RequestURI()]; ok {
			w.Header().Set("Link", link)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCanvas) client(t *testing.T, opts ...Option) *Client {
	c, err := NewClient("tok-123", &config.CanvasConfig{
		BaseURL: f.server.URL + "/api/v1",
		Timeout: 5 * time.Second,
	}, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient("   ", nil)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClient_SendsBearerToken(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses"] = `[{"id":1,"name":"Calculus","course_code":"MATH 150"}]`

	courses, err := f.client(t).GetCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Calculus", courses[0].Name)
	assert.Equal(t, []string{"Bearer tok-123"}, f.auth)
	assert.Contains(t, f.urls[0], "enrollment_state=active")
}

func TestClient_NormalizesSingleObjectIntoList(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/101/assignments"] = `{"id":7,"name":"Essay 1","course_id":101}`

	assignments, err := f.client(t).GetAssignments(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, int64(7), assignments[0].ID)
}

func TestClient_NullBodyIsEmptyList(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/101/quizzes"] = `null`

	quizzes, err := f.client(t).GetQuizzes(context.Background(), 101)
	require.NoError(t, err)
	assert.NotNil(t, quizzes)
	assert.Empty(t, quizzes)
}

func TestClient_SingleFetchFromArrayTakesFirst(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/5"] = `[{"id":5,"name":"Physics"}]`

	course, err := f.client(t).GetCourse(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Physics", course.Name)
}

func TestClient_NonSuccessStatusCarriesCodeAndBody(t *testing.T) {
	f := newFakeCanvas(t)
	f.status["/api/v1/courses/9/pages"] = http.StatusUnauthorized

	_, err := f.client(t).GetPages(context.Background(), 9)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestClient_NotFound(t *testing.T) {
	f := newFakeCanvas(t)

	_, err := f.client(t).GetAssignment(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_PageSlugIsEscaped(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/3/pages/week-1 intro"] = `{"page_id":11,"title":"Week 1","url":"week-1-intro","body":"<p>hi</p>"}`

	page, err := f.client(t).GetPage(context.Background(), 3, "week-1 intro")
	require.NoError(t, err)
	assert.Equal(t, "Week 1", page.Title)
	assert.Contains(t, f.urls[0], "week-1%20intro")
}

func TestClient_SingleFileNeedsNoCourse(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/files/44"] = `{"id":44,"display_name":"syllabus.pdf","content-type":"application/pdf"}`

	file, err := f.client(t).GetFile(context.Background(), 44)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
}

func TestClient_FollowsNextLinks(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/1/files"] = `[{"id":1}]`
	f.links["/api/v1/courses/1/files"] = fmt.Sprintf(`<%s/api/v1/courses/1/files?page=2>; rel="next", <%s/api/v1/courses/1/files?page=1>; rel="first"`, f.server.URL, f.server.URL)

	files, err := f.client(t).GetFiles(context.Background(), 1)
	require.NoError(t, err)
	// page 2 serves the same canned body without a further Link header
	assert.Len(t, files, 2)
	assert.Equal(t, int32(2), f.hits.Load())
}

// chainPages links the files collection of course 1 through total pages
func chainPages(f *fakeCanvas, total int) {
	f.routes["/api/v1/courses/1/files"] = `[{"id":1}]`
	base := "/api/v1/courses/1/files"
	f.links[base] = fmt.Sprintf(`<%s%s?page=2>; rel="next"`, f.server.URL, base)
	for page := 2; page < total; page++ {
		f.links[fmt.Sprintf("%s?page=%d", base, page)] = fmt.Sprintf(`<%s%s?page=%d>; rel="next"`, f.server.URL, base, page+1)
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestClient_WarnsWhenPageLimitTruncates(t *testing.T) {
	f := newFakeCanvas(t)
	chainPages(f, 12)
	buf := captureLog(t)

	files, err := f.client(t).GetFiles(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, files, defaultMaxPages)
	assert.Equal(t, int32(defaultMaxPages), f.hits.Load())

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "canvas collection truncated at page limit")
	assert.Contains(t, out, `"path":"/courses/1/files"`)
	assert.Contains(t, out, `"pages":10`)
}

func TestClient_MaxPagesOption(t *testing.T) {
	f := newFakeCanvas(t)
	chainPages(f, 12)
	buf := captureLog(t)

	files, err := f.client(t, WithMaxPages(3)).GetFiles(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.Contains(t, buf.String(), `"pages":3`)
}

func TestClient_NoWarningWhenCollectionEnds(t *testing.T) {
	f := newFakeCanvas(t)
	chainPages(f, 4)
	buf := captureLog(t)

	files, err := f.client(t).GetFiles(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, files, 4)
	assert.NotContains(t, buf.String(), "truncated")
}

func TestClient_RefusesForeignNextLink(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/1/files"] = `[{"id":1}]`
	f.links["/api/v1/courses/1/files"] = `<https://evil.example.com/steal>; rel="next"`

	_, err := f.client(t).GetFiles(context.Background(), 1)
	assert.ErrorIs(t, err, ErrForeignLink)
}

func TestClient_PerPageQuery(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/1/modules"] = `[]`
	c, err := NewClient("tok", &config.CanvasConfig{BaseURL: f.server.URL + "/api/v1", PerPage: 50})
	require.NoError(t, err)

	_, err = c.GetModules(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, f.urls[0], "per_page=50")
	assert.Contains(t, f.urls[0], "include%5B%5D=items")
}

func TestClient_RepeatedReadsAreDeepEqual(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/101/assignments/7"] = `{"id":7,"name":"Essay","due_at":"2025-03-01T23:59:00Z","description":"<p>write</p>","course_id":101}`
	c := f.client(t)

	first, err := c.GetAssignment(context.Background(), 101, 7)
	require.NoError(t, err)
	second, err := c.GetAssignment(context.Background(), 101, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) SetBytes(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func TestClient_SnapshotCache(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/2"] = `{"id":2,"name":"Biology"}`
	mc := &memoryCache{data: map[string][]byte{}}
	c := f.client(t, WithCache(mc, time.Minute))

	first, err := c.GetCourse(context.Background(), 2)
	require.NoError(t, err)
	second, err := c.GetCourse(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.hits.Load())
	for key := range mc.data {
		assert.NotContains(t, key, "tok-123")
	}
}

func TestClient_ZeroTTLDisablesCache(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/2"] = `{"id":2}`
	c := f.client(t, WithCache(&memoryCache{data: map[string][]byte{}}, 0))

	_, _ = c.GetCourse(context.Background(), 2)
	_, _ = c.GetCourse(context.Background(), 2)
	assert.Equal(t, int32(2), f.hits.Load())
}

func TestParseNextLink(t *testing.T) {
	assert.Equal(t, "https://x/a?page=2", parseNextLink(`<https://x/a?page=1>; rel="current",<https://x/a?page=2>; rel="next"`))
	assert.Equal(t, "https://x/a?page=3", parseNextLink(`<https://x/a?page=3>; rel=next`))
	assert.Equal(t, "", parseNextLink(`<https://x/a?page=1>; rel="last"`))
	assert.Equal(t, "", parseNextLink(""))
}
