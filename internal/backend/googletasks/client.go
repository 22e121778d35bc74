// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskrush/internal/auth"
	"taskrush/internal/config"
	"taskrush/internal/service"
)

const (
	// PageSize is the number of items requested per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// UserID identifies the token owner; the Tasks API exposes no stable id.
	UserID = "@me"

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	auth.Notifier

	svc       *tasks.Service
	tokenPath string
	now       func() time.Time

	mu       sync.Mutex
	signedIn bool
	taskList map[string]string // task id -> list id
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := LoadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	c := &Client{
		tokenPath: cfg.TokenPath(),
		now:       time.Now,
		signedIn:  true,
		taskList:  make(map[string]string),
	}

	ts := &notifyingSource{
		base:   oauthConfig.TokenSource(ctx, &token),
		last:   token.AccessToken,
		onSave: c.tokenRefreshed,
	}
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	c.svc = svc
	return c, nil
}

// NewWithHTTPClient creates a signed-in client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, now: time.Now, signedIn: true, taskList: make(map[string]string)}, nil
}

// LoadOAuthConfig reads oauth_client.json from the config directory.
func LoadOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oauthConfig, nil
}

// SaveToken writes an OAuth token with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// notifyingSource reports access tokens that differ from the last one seen.
type notifyingSource struct {
	base   oauth2.TokenSource
	onSave func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (s *notifyingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	changed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()
	if changed && s.onSave != nil {
		s.onSave(tok)
	}
	return tok, nil
}

func (c *Client) tokenRefreshed(tok *oauth2.Token) {
	if c.tokenPath != "" {
		// a failed write only costs another refresh next run
		_ = SaveToken(c.tokenPath, tok)
	}
	c.Notify(service.AuthTokenRefreshed, &service.Session{UserID: UserID, ExpiresAt: tok.Expiry})
}

// Session implements service.Auth.
func (c *Client) Session(ctx context.Context) (*service.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.signedIn {
		return nil, nil
	}
	return &service.Session{UserID: UserID}, nil
}

// SignOut implements service.Auth. The stored token is removed.
func (c *Client) SignOut(ctx context.Context) error {
	if c.tokenPath != "" {
		if err := os.Remove(c.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove token: %w", err)
		}
	}
	c.mu.Lock()
	c.signedIn = false
	c.mu.Unlock()
	c.Notify(service.AuthSignedOut, nil)
	return nil
}

func (c *Client) requireSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.signedIn {
		return service.ErrNotAuthenticated
	}
	return nil
}

func (c *Client) remember(taskID, listID string) {
	c.mu.Lock()
	c.taskList[taskID] = listID
	c.mu.Unlock()
}

func (c *Client) forget(taskID string) {
	c.mu.Lock()
	delete(c.taskList, taskID)
	c.mu.Unlock()
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.List, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []service.List
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			l := fromAPIList(list)
			l.SortOrder = int64(len(result))
			result = append(result, l)
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateList creates a new task list. Color is not stored by Google Tasks.
func (c *Client) CreateList(ctx context.Context, list service.NewList) (service.List, error) {
	if err := c.requireSession(); err != nil {
		return service.List{}, err
	}
	list = list.WithDefaults()
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: list.Name}).Context(ctx).Do()
	if err != nil {
		return service.List{}, wrapError(err)
	}
	l := fromAPIList(created)
	l.Color = list.Color
	l.SortOrder = service.SortOrderAt(c.now())
	return l, nil
}

// UpdateList renames a task list. Color and sort order are not stored by
// Google Tasks and are echoed back unchanged.
func (c *Client) UpdateList(ctx context.Context, id string, patch service.ListPatch) (service.List, error) {
	if err := c.requireSession(); err != nil {
		return service.List{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var (
		list *tasks.TaskList
		err  error
	)
	if patch.Name != nil {
		list, err = c.svc.Tasklists.Patch(id, &tasks.TaskList{Title: *patch.Name}).Context(ctx).Do()
	} else {
		list, err = c.svc.Tasklists.Get(id).Context(ctx).Do()
	}
	if err != nil {
		return service.List{}, wrapError(err)
	}
	return patch.Apply(fromAPIList(list)), nil
}

// DeleteList deletes a task list by ID.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasklists.Delete(id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// ListTasks returns the tasks of a list, or of every list when listID is "",
// ordered by sort order.
func (c *Client) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	listIDs := []string{listID}
	if listID == "" {
		lists, err := c.ListLists(ctx)
		if err != nil {
			return nil, err
		}
		listIDs = listIDs[:0]
		for _, l := range lists {
			listIDs = append(listIDs, l.ID)
		}
	}

	var result []service.Task
	for _, id := range listIDs {
		got, err := c.listTasks(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, got...)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (c *Client) listTasks(ctx context.Context, listID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []service.Task
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, item := range resp.Items {
				result = append(result, fromAPITask(listID, item))
				c.remember(item.Id, listID)
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// ListTasksSince returns tasks of every list created at or after since.
func (c *Client) ListTasksSince(ctx context.Context, since time.Time) ([]service.Task, error) {
	all, err := c.ListTasks(ctx, "")
	if err != nil {
		return nil, err
	}
	var result []service.Task
	for _, t := range all {
		if !t.CreatedAt.Before(since) {
			result = append(result, t)
		}
	}
	return result, nil
}

// CreateTask creates a new task in the specified list.
func (c *Client) CreateTask(ctx context.Context, task service.NewTask) (service.Task, error) {
	if err := c.requireSession(); err != nil {
		return service.Task{}, err
	}
	task = task.WithDefaults()
	now := c.now()
	m := meta{Estimated: task.EstimatedMinutes, Priority: task.Priority, SortOrder: service.SortOrderAt(now)}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(task.ListID, &tasks.Task{
		Title:  task.Title,
		Notes:  encodeNotes("", m),
		Status: statusNeedsAction,
	}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	c.remember(created.Id, task.ListID)
	return fromAPITask(task.ListID, created), nil
}

// UpdateTask patches a task. Moving a task between lists is not supported.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if err := c.requireSession(); err != nil {
		return service.Task{}, err
	}
	listID, err := c.findList(ctx, id)
	if err != nil {
		return service.Task{}, err
	}
	if patch.ListID != nil && *patch.ListID != listID {
		return service.Task{}, fmt.Errorf("moving tasks between lists is not supported")
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// The footer is rewritten as a whole, so start from the stored task.
	current, err := c.svc.Tasks.Get(listID, id).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	next := patch.Apply(fromAPITask(listID, current))

	body := toAPITask(next)
	updated, err := c.svc.Tasks.Patch(listID, id, body).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPITask(listID, updated), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	listID, err := c.findList(ctx, id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	c.forget(id)
	return nil
}

// findList returns the list holding taskID, scanning every list on a cache miss.
func (c *Client) findList(ctx context.Context, taskID string) (string, error) {
	c.mu.Lock()
	listID, ok := c.taskList[taskID]
	c.mu.Unlock()
	if ok {
		return listID, nil
	}
	if _, err := c.ListTasks(ctx, ""); err != nil {
		return "", err
	}
	c.mu.Lock()
	listID, ok = c.taskList[taskID]
	c.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: task %s", service.ErrNotFound, taskID)
	}
	return listID, nil
}

func fromAPIList(l *tasks.TaskList) service.List {
	updated := parseTime(l.Updated)
	return service.List{
		ID:        l.Id,
		UserID:    UserID,
		Name:      l.Title,
		Color:     service.DefaultListColor,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func fromAPITask(listID string, t *tasks.Task) service.Task {
	notes, m, ok := decodeNotes(t.Notes)
	if !ok {
		m.Estimated = service.DefaultEstimatedMinutes
	}
	task := service.Task{
		ID:               t.Id,
		UserID:           UserID,
		ListID:           listID,
		Title:            t.Title,
		Notes:            notes,
		IsCompleted:      t.Status == statusCompleted,
		EstimatedMinutes: m.Estimated,
		ActualMinutes:    m.Actual,
		Priority:         m.Priority,
		SortOrder:        m.SortOrder,
		UpdatedAt:        parseTime(t.Updated),
	}
	if ok && m.SortOrder > 0 {
		task.CreatedAt = time.Unix(m.SortOrder, 0).UTC()
	} else {
		task.CreatedAt = task.UpdatedAt
	}
	if t.Completed != nil {
		if at := parseTime(*t.Completed); !at.IsZero() {
			task.CompletedAt = &at
		}
	}
	if t.Due != "" {
		if due := parseTime(t.Due); !due.IsZero() {
			task.ScheduledDate = &due
		}
	}
	return task
}

func toAPITask(t service.Task) *tasks.Task {
	body := &tasks.Task{
		Title: t.Title,
		Notes: encodeNotes(t.Notes, meta{
			Estimated: t.EstimatedMinutes,
			Actual:    t.ActualMinutes,
			Priority:  t.Priority,
			SortOrder: t.SortOrder,
		}),
		Status: statusNeedsAction,
	}
	if t.IsCompleted {
		body.Status = statusCompleted
		if t.CompletedAt != nil {
			s := t.CompletedAt.UTC().Format(time.RFC3339)
			body.Completed = &s
		}
	} else {
		body.NullFields = append(body.NullFields, "Completed")
	}
	if t.ScheduledDate != nil {
		body.Due = t.ScheduledDate.UTC().Format("2006-01-02") + "T00:00:00.000Z"
	} else {
		body.NullFields = append(body.NullFields, "Due")
	}
	return body
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out: %w", err)
	}

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("%w: token expired or revoked (run: taskrush login)", service.ErrNotAuthenticated)
	}

	if strings.Contains(errStr, "404") {
		return service.ErrNotFound
	}

	return err
}
