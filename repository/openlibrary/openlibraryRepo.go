package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Manohar-mrtarns/bookmanagementsystem/util/httpx"
)

// BookMeta is the subset of Open Library data used to fill in a catalog
// entry the librarian left blank.
type BookMeta struct {
	Title       string
	Description string
	CoverURL    string
}

type Repo interface {
	LookupISBN(ctx context.Context, isbn string) (*BookMeta, error)
}

type httpRepo struct {
	baseURL string
	client  *http.Client
}

func NewHTTP() Repo {
	return &httpRepo{baseURL: "https://openlibrary.org", client: httpx.Client()}
}

// NewHTTPWithBase exists for tests pointed at a stub server.
func NewHTTPWithBase(baseURL string) Repo {
	return &httpRepo{baseURL: baseURL, client: httpx.Client()}
}

func (r *httpRepo) LookupISBN(ctx context.Context, isbn string) (*BookMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/isbn/%s.json", r.baseURL, isbn), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("openlibrary: isbn %s not found", isbn)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openlibrary lookup failed: %s", resp.Status)
	}

	var out struct {
		Title       string          `json:"title"`
		Description json.RawMessage `json:"description"`
		Covers      []int64         `json:"covers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	meta := &BookMeta{Title: out.Title}
	// description is either a plain string or {"type":..., "value": "..."}
	if len(out.Description) > 0 {
		var s string
		if json.Unmarshal(out.Description, &s) == nil {
			meta.Description = s
		} else {
			var obj struct {
				Value string `json:"value"`
			}
			if json.Unmarshal(out.Description, &obj) == nil {
				meta.Description = obj.Value
			}
		}
	}
	if len(out.Covers) > 0 {
		meta.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", out.Covers[0])
	}
	return meta, nil
}
