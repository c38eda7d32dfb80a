package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/MCV/internal/domain"
)

const maxErrorBody = 64 << 10

// Client 封装 TMDB collection 查询。
//
// 约束：
// - 不做缓存、不做重试（重试由用户手动触发）
// - 所有失败都归类为 *Error（三类之一）
type Client struct {
	BaseURL  string
	APIKey   string
	Language string

	HTTP   *http.Client
	Logger *zap.Logger
}

// New 构造 Client；logger 为 nil 时使用 Nop。
func New(baseURL, apiKey, language string, c *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = http.DefaultClient
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Language: language,
		HTTP:     c,
		Logger:   logger,
	}
}

type collectionResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Overview string  `json:"overview"`
	Parts    []movie `json:"parts"`
}

type movie struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate *string  `json:"release_date"`
	Overview    *string  `json:"overview"`
	PosterPath  *string  `json:"poster_path"`
	VoteAverage *float64 `json:"vote_average"`
	Popularity  float64  `json:"popularity"`
}

func (m movie) toDomain() domain.Movie {
	return domain.Movie{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: deref(m.ReleaseDate),
		Overview:    deref(m.Overview),
		PosterPath:  deref(m.PosterPath),
		Popularity:  m.Popularity,
		VoteAverage: m.VoteAverage,
	}
}

type errorResponse struct {
	StatusMessage string `json:"status_message"`
	StatusCode    int    `json:"status_code"`
}

// FetchCollection 获取单个 collection 及其全部 parts。
func (c *Client) FetchCollection(ctx context.Context, id string) (domain.Collection, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Collection{}, c.setupErr(fmt.Errorf("collection id 不能为空"))
	}

	var body collectionResponse
	if err := c.get(ctx, "/collection/"+url.PathEscape(id), nil, &body); err != nil {
		return domain.Collection{}, err
	}

	parts := make([]domain.Movie, 0, len(body.Parts))
	for _, p := range body.Parts {
		parts = append(parts, p.toDomain())
	}
	return domain.Collection{
		ID:       body.ID,
		Name:     body.Name,
		Overview: body.Overview,
		Parts:    parts,
	}, nil
}

// CollectionRef 是 /search/collection 的单条结果。
type CollectionRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Overview string `json:"overview,omitempty"`
}

type searchResponse struct {
	Page         int             `json:"page"`
	Results      []CollectionRef `json:"results"`
	TotalResults int             `json:"total_results"`
}

// SearchCollections 按名称搜索 collection（只取第一页）。
func (c *Client) SearchCollections(ctx context.Context, query string) ([]CollectionRef, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, c.setupErr(fmt.Errorf("query 不能为空"))
	}
	var body searchResponse
	if err := c.get(ctx, "/search/collection", url.Values{"query": {query}}, &body); err != nil {
		return nil, err
	}
	if body.Results == nil {
		return []CollectionRef{}, nil
	}
	return body.Results, nil
}

func (c *Client) get(ctx context.Context, path string, extra url.Values, out any) error {
	u, err := c.endpoint(path, extra)
	if err != nil {
		return c.setupErr(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return c.setupErr(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		e := &Error{Kind: KindUnreachable, Message: MsgUnreachable, Err: err}
		c.Logger.Warn("tmdb no response", zap.String("path", path), zap.Error(err))
		return e
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := MsgFetchFailed
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var er errorResponse
		if json.Unmarshal(b, &er) == nil && strings.TrimSpace(er.StatusMessage) != "" {
			msg = strings.TrimSpace(er.StatusMessage)
		}
		c.Logger.Warn("tmdb error response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("status_message", msg),
		)
		return &Error{Kind: KindRemoteRejected, Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &Error{Kind: KindUnreachable, Message: MsgUnreachable, Err: err}
		}
		c.Logger.Warn("tmdb decode failed", zap.String("path", path), zap.Error(err))
		return &Error{Kind: KindRemoteRejected, Status: resp.StatusCode, Message: MsgFetchFailed, Err: err}
	}
	return nil
}

// endpoint 拼接完整 URL：base + path，并附带 api_key/language。
func (c *Client) endpoint(path string, extra url.Values) (string, error) {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return "", fmt.Errorf("base url 不能为空")
	}
	u, err := url.Parse(base + path)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base url 必须是 http/https：%q", base)
	}
	q := u.Query()
	q.Set("api_key", c.APIKey)
	if c.Language != "" {
		q.Set("language", c.Language)
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) setupErr(err error) error {
	c.Logger.Warn("tmdb request setup failed", zap.Error(err))
	return &Error{Kind: KindRequestSetup, Message: MsgSetup, Err: err}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
