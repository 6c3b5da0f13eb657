package workboard

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/signbridge/backend/internal/domain/workitem"
)

// ---------------------------------------------------------------------------
// GraphQL envelope
// ---------------------------------------------------------------------------

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// graphQLResponse covers both the GraphQL error list and the older
// top-level error_code/error_message shape the platform still emits.
type graphQLResponse struct {
	Data         json.RawMessage `json:"data"`
	Errors       []graphQLError  `json:"errors"`
	ErrorCode    string          `json:"error_code"`
	ErrorMessage string          `json:"error_message"`
	StatusCode   int             `json:"status_code"`
}

// firstError returns the first reported error message and code
func (r *graphQLResponse) firstError() (message, code string, ok bool) {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message, r.Errors[0].Extensions.Code, true
	}
	if r.ErrorMessage != "" || r.ErrorCode != "" {
		return r.ErrorMessage, r.ErrorCode, true
	}
	return "", "", false
}

// isAuthError reports whether a GraphQL error means the token was rejected
func isAuthError(message, code string) bool {
	switch strings.ToUpper(code) {
	case "UNAUTHENTICATED", "USERUNAUTHORIZEDEXCEPTION", "INVALIDUSERIDEXCEPTION":
		return true
	}
	return strings.Contains(strings.ToLower(message), "not authenticated")
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

const itemQuery = `query($ids: [ID!]) {
  items(ids: $ids) {
    id
    name
    board { id }
    column_values {
      id
      type
      text
      value
      column { title }
    }
  }
}`

const boardItemsQuery = `query($ids: [ID!], $limit: Int!) {
  boards(ids: $ids) {
    items_page(limit: $limit, query_params: {order_by: [{column_id: "__creation_log__", direction: desc}]}) {
      items { id name created_at }
    }
  }
}`

const assetQuery = `query($ids: [ID!]!) {
  assets(ids: $ids) {
    id
    name
    url
    public_url
    file_extension
    file_size
  }
}`

const meQuery = `query { me { id name email } }`

const usersQuery = `query($ids: [ID!]) { users(ids: $ids) { id name email } }`

// ---------------------------------------------------------------------------
// Response payloads
// ---------------------------------------------------------------------------

type mondayColumnValue struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Text   *string `json:"text"`
	Value  *string `json:"value"`
	Column struct {
		Title string `json:"title"`
	} `json:"column"`
}

type mondayItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Board     *struct {
		ID string `json:"id"`
	} `json:"board"`
	ColumnValues []mondayColumnValue `json:"column_values"`
}

type itemsData struct {
	Items []mondayItem `json:"items"`
}

type boardsData struct {
	Boards []struct {
		ItemsPage struct {
			Items []mondayItem `json:"items"`
		} `json:"items_page"`
	} `json:"boards"`
}

type mondayAsset struct {
	ID            workitem.FlexibleID `json:"id"`
	Name          string              `json:"name"`
	URL           string              `json:"url"`
	PublicURL     string              `json:"public_url"`
	FileExtension string              `json:"file_extension"`
	FileSize      int64               `json:"file_size"`
}

type assetsData struct {
	Assets []mondayAsset `json:"assets"`
}

type mondayUser struct {
	ID    workitem.FlexibleID `json:"id"`
	Name  string              `json:"name"`
	Email string              `json:"email"`
}

type meData struct {
	Me *mondayUser `json:"me"`
}

type usersData struct {
	Users []mondayUser `json:"users"`
}

// ---------------------------------------------------------------------------
// Host session token
// ---------------------------------------------------------------------------

// sessionClaims are the claims of a host session token. The platform signs
// it with the app's client secret and nests the identity under "dat".
type sessionClaims struct {
	jwt.RegisteredClaims
	Data sessionData `json:"dat"`
}

type sessionData struct {
	ClientID   string              `json:"client_id"`
	UserID     workitem.FlexibleID `json:"user_id"`
	AccountID  workitem.FlexibleID `json:"account_id"`
	Slug       string              `json:"slug"`
	AppID      workitem.FlexibleID `json:"app_id"`
	IsAdmin    bool                `json:"is_admin"`
	IsViewOnly bool                `json:"is_view_only"`
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

func toRawItem(m mondayItem) *workitem.RawItem {
	item := &workitem.RawItem{
		ID:      m.ID,
		Name:    m.Name,
		Columns: make([]workitem.Column, 0, len(m.ColumnValues)),
	}
	if m.Board != nil {
		item.BoardID = m.Board.ID
	}
	for _, cv := range m.ColumnValues {
		col := workitem.Column{
			ID:    cv.ID,
			Title: cv.Column.Title,
			Type:  workitem.ColumnType(cv.Type),
		}
		if cv.Text != nil {
			col.Text = *cv.Text
		}
		if cv.Value != nil {
			col.Value = *cv.Value
		}
		item.Columns = append(item.Columns, col)
	}
	return item
}

func toUser(u *mondayUser) workitem.User {
	if u == nil {
		return workitem.User{}
	}
	return workitem.User{ID: u.ID.String(), Name: u.Name, Email: u.Email}
}

func toAsset(a mondayAsset) *workitem.Asset {
	return &workitem.Asset{
		ID:            a.ID.String(),
		Name:          a.Name,
		URL:           a.URL,
		PublicURL:     a.PublicURL,
		FileExtension: a.FileExtension,
		SizeBytes:     a.FileSize,
	}
}
