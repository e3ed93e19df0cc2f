package httpapi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/example/topicatlas/internal/labels"
	"github.com/example/topicatlas/internal/query"
)

const Ok = "ok"

type Health struct {
	Status string `json:"status"`
}

type Error struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details *map[string]any `json:"details,omitempty"`
}

type Source struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Derived bool   `json:"derived"`
	Note    string `json:"note,omitempty"`
}

type SourceList struct {
	Items      []Source `json:"items"`
	Records    int      `json:"records"`
	Encoding   string   `json:"encoding,omitempty"`
	Duplicates []string `json:"duplicates,omitempty"`
}

type FacetList struct {
	Source string        `json:"source"`
	Items  []query.Facet `json:"items"`
}

type PersonSummary struct {
	Identity   string `json:"identity"`
	Name       string `json:"name"`
	Contact    string `json:"contact,omitempty"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

type PersonList struct {
	Items []PersonSummary `json:"items"`
}

type MemberList struct {
	Source string          `json:"source"`
	Label  string          `json:"label"`
	Items  []PersonSummary `json:"items"`
}

type Person struct {
	Identity   string             `json:"identity"`
	Name       string             `json:"name"`
	Contact    string             `json:"contact,omitempty"`
	ExternalID string             `json:"externalId,omitempty"`
	ProfileURL string             `json:"profileUrl,omitempty"`
	Note       string             `json:"note,omitempty"`
	Sources    []query.SourceView `json:"sources"`
	Merged     labels.Set         `json:"merged"`
}

type RecordList struct {
	Total int      `json:"total"`
	Items []Person `json:"items"`
}

type ExportResult struct {
	File string `json:"file"`
	Rows int    `json:"rows"`
}

type ListTopicsParams struct {
	Source         *string
	Q              *string
	Sort           *string
	HideSingletons *bool
}

type ListTopicMembersParams struct {
	Source *string
}

type SearchPeopleParams struct {
	Q *string
}

type FilterRecordsParams struct {
	CategorySource *string
	Category       *[]string
	KeywordSource  *string
	Keyword        *string
	Match          *string
}

// ServerInterface is implemented by *Server; the wrapper binds parameters
// before calling it.
type ServerInterface interface {
	GetHealthz(w http.ResponseWriter, r *http.Request)
	GetReadyz(w http.ResponseWriter, r *http.Request)
	ListSources(w http.ResponseWriter, r *http.Request)
	ListTopics(w http.ResponseWriter, r *http.Request, params ListTopicsParams)
	ListTopicMembers(w http.ResponseWriter, r *http.Request, label string, params ListTopicMembersParams)
	SearchPeople(w http.ResponseWriter, r *http.Request, params SearchPeopleParams)
	GetPerson(w http.ResponseWriter, r *http.Request, identity string)
	ExportPerson(w http.ResponseWriter, r *http.Request, identity string)
	FilterRecords(w http.ResponseWriter, r *http.Request, params FilterRecordsParams)
	ExportRecords(w http.ResponseWriter, r *http.Request, params FilterRecordsParams)
	SaveRecordsExport(w http.ResponseWriter, r *http.Request, params FilterRecordsParams)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) ListTopics(w http.ResponseWriter, r *http.Request) {
	var params ListTopicsParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "source", q, &params.Source); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "source", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "q", q, &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "sort", q, &params.Sort); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "sort", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "hideSingletons", q, &params.HideSingletons); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "hideSingletons", Err: err})
		return
	}
	siw.Handler.ListTopics(w, r, params)
}

func (siw *ServerInterfaceWrapper) ListTopicMembers(w http.ResponseWriter, r *http.Request) {
	var label string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "label", runtime.ParamLocationPath, escapedURLParam(r, "label"), &label); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "label", Err: err})
		return
	}
	var params ListTopicMembersParams
	if err := runtime.BindQueryParameter("form", true, false, "source", r.URL.Query(), &params.Source); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "source", Err: err})
		return
	}
	siw.Handler.ListTopicMembers(w, r, label, params)
}

// escapedURLParam returns a path parameter in escaped form. chi matches on
// RawPath when the request has one and on the decoded Path otherwise; the
// binder unescapes path values itself, so decoded values are escaped again.
func escapedURLParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		return v
	}
	return url.PathEscape(v)
}

func (siw *ServerInterfaceWrapper) SearchPeople(w http.ResponseWriter, r *http.Request) {
	var params SearchPeopleParams
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	siw.Handler.SearchPeople(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetPerson(w http.ResponseWriter, r *http.Request) {
	identity, ok := siw.identity(w, r)
	if !ok {
		return
	}
	siw.Handler.GetPerson(w, r, identity)
}

func (siw *ServerInterfaceWrapper) ExportPerson(w http.ResponseWriter, r *http.Request) {
	identity, ok := siw.identity(w, r)
	if !ok {
		return
	}
	siw.Handler.ExportPerson(w, r, identity)
}

func (siw *ServerInterfaceWrapper) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	var identity string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "identity", runtime.ParamLocationPath, escapedURLParam(r, "identity"), &identity); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "identity", Err: err})
		return "", false
	}
	return identity, true
}

func (siw *ServerInterfaceWrapper) FilterRecords(w http.ResponseWriter, r *http.Request) {
	params, ok := siw.filterParams(w, r)
	if !ok {
		return
	}
	siw.Handler.FilterRecords(w, r, params)
}

func (siw *ServerInterfaceWrapper) ExportRecords(w http.ResponseWriter, r *http.Request) {
	params, ok := siw.filterParams(w, r)
	if !ok {
		return
	}
	siw.Handler.ExportRecords(w, r, params)
}

func (siw *ServerInterfaceWrapper) SaveRecordsExport(w http.ResponseWriter, r *http.Request) {
	params, ok := siw.filterParams(w, r)
	if !ok {
		return
	}
	siw.Handler.SaveRecordsExport(w, r, params)
}

func (siw *ServerInterfaceWrapper) filterParams(w http.ResponseWriter, r *http.Request) (FilterRecordsParams, bool) {
	var params FilterRecordsParams
	q := r.URL.Query()
	bindings := []struct {
		name string
		dest any
	}{
		{"categorySource", &params.CategorySource},
		{"category", &params.Category},
		{"keywordSource", &params.KeywordSource},
		{"keyword", &params.Keyword},
		{"match", &params.Match},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return params, false
		}
	}
	return params, true
}
