// Package supabase is a small client for the two Supabase services the
// dashboard talks to: PostgREST for table reads and GoTrue for password sign-in.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
	Body    string `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Body)
}

// Client talks to a Supabase project with its anon key
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// NewClient creates a client for the project at baseURL
func NewClient(baseURL, anonKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// ── PostgREST ──

// Order is one column of an order clause
type Order struct {
	Column    string
	Ascending bool
}

// Query is a PostgREST select over a table
type Query struct {
	c       *Client
	table   string
	columns []string
	order   []Order
	from    int
	to      int
	ranged  bool
}

// From starts a query on table
func (c *Client) From(table string) *Query {
	return &Query{c: c, table: table}
}

// Select restricts the returned columns; no call selects "*"
func (q *Query) Select(columns ...string) *Query {
	q.columns = append(q.columns, columns...)
	return q
}

// Order appends an order column
func (q *Query) Order(column string, ascending bool) *Query {
	q.order = append(q.order, Order{Column: column, Ascending: ascending})
	return q
}

// Range limits the result to rows from..to, inclusive and 0-based
func (q *Query) Range(from, to int) *Query {
	q.from, q.to, q.ranged = from, to, true
	return q
}

func (q *Query) values() url.Values {
	v := url.Values{}
	if len(q.columns) > 0 {
		v.Set("select", strings.Join(q.columns, ","))
	} else {
		v.Set("select", "*")
	}
	if len(q.order) > 0 {
		parts := make([]string, len(q.order))
		for i, o := range q.order {
			dir := "desc"
			if o.Ascending {
				dir = "asc"
			}
			parts[i] = o.Column + "." + dir
		}
		v.Set("order", strings.Join(parts, ","))
	}
	if q.ranged {
		v.Set("offset", strconv.Itoa(q.from))
		v.Set("limit", strconv.Itoa(q.to-q.from+1))
	}
	return v
}

// Execute runs the query. Numbers are decoded as json.Number.
func (q *Query) Execute(ctx context.Context) ([]map[string]any, error) {
	u := q.c.baseURL + "/rest/v1/" + url.PathEscape(q.table) + "?" + q.values().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	q.c.authorize(req, q.c.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := q.c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.table, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("select %s: %w", q.table, err)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("select %s: decode: %w", q.table, err)
	}
	return rows, nil
}

// ── GoTrue ──

// User is the authenticated account
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the result of a password grant
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// SignInWithPassword exchanges email and password for a session
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.authorize(req, c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("sign in: decode: %w", err)
	}
	return &s, nil
}

// SignOut revokes the session behind accessToken
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	c.authorize(req, accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Client) authorize(req *http.Request, bearer string) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode, Body: string(raw)}
	_ = json.Unmarshal(raw, apiErr)
	if apiErr.Message == "" {
		// GoTrue reports errors as error_description / msg
		var alt struct {
			Description string `json:"error_description"`
			Msg         string `json:"msg"`
		}
		if json.Unmarshal(raw, &alt) == nil {
			apiErr.Message = alt.Description
			if apiErr.Message == "" {
				apiErr.Message = alt.Msg
			}
		}
	}
	return apiErr
}
