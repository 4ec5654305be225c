package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/internal/validation"
	"github.com/rendis/dsviz/internal/visualizer"
	"github.com/rendis/dsviz/pkg/schema"
)

type operationResponse struct {
	Success   bool                 `json:"success"`
	Structure schema.StructureKind `json:"structure"`
	Operation string               `json:"operation"`
	Channel   string               `json:"channel"`
	Steps     int                  `json:"steps"`
	Result    string               `json:"result"`
	Message   string               `json:"message"`
	Item      *schema.Item         `json:"item,omitempty"`
	Trace     []trace.Step         `json:"trace,omitempty"`
}

// handleOperation runs /api/{kind}/{op}. Items come from a multipart
// upload (field "file"), a JSON body, or the filename, content_type and
// size query parameters.
func (s *Server) handleOperation(kind schema.StructureKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.operationRequest(w, r, kind, r.PathValue("op"))
		if err != nil {
			writeError(w, err)
			return
		}
		s.apply(w, r, req)
	}
}

// handleOperationJSON runs an operation described entirely by the body.
func (s *Server) handleOperationJSON(w http.ResponseWriter, r *http.Request) {
	var req visualizer.Request
	if err := s.readBody(r, validation.DocOperation, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := requireParams(req); err != nil {
		writeError(w, err)
		return
	}
	if req.Item != nil {
		fillItem(req.Item)
	}
	s.apply(w, r, req)
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, req visualizer.Request) {
	res, err := s.deps.Service.Apply(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	last := trace.Last(res.Steps)
	resp := operationResponse{
		Success:   true,
		Structure: req.Structure,
		Operation: strings.ToLower(req.Operation),
		Channel:   res.Channel,
		Steps:     len(res.Steps),
		Result:    string(last.Operation),
		Message:   last.Description,
		Item:      req.Item,
	}
	if wantTrace(r) {
		resp.Trace = res.Steps
	}
	s.respond(w, r, http.StatusOK, resp)
}

func wantTrace(r *http.Request) bool {
	q := r.URL.Query()
	if q.Get("jq") != "" {
		return true
	}
	b, _ := strconv.ParseBool(q.Get("trace"))
	return b
}

func (s *Server) operationRequest(w http.ResponseWriter, r *http.Request, kind schema.StructureKind, op string) (visualizer.Request, error) {
	req := visualizer.Request{Structure: kind, Operation: op}
	q := r.URL.Query()

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case ct == "multipart/form-data":
		item, err := s.uploadedItem(w, r)
		if err != nil {
			return req, err
		}
		req.Item = item
	case ct == "application/json" && r.ContentLength != 0:
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			return req, badRequest("read body: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return req, badRequest("invalid JSON: %v", err)
		}
		body["structure"] = string(kind)
		body["operation"] = op
		if err := s.deps.Validator.ValidateValue(validation.DocOperation, body); err != nil {
			return req, err
		}
		merged, _ := json.Marshal(body)
		if err := json.Unmarshal(merged, &req); err != nil {
			return req, badRequest("invalid JSON: %v", err)
		}
	}

	if v := firstNonEmpty(q.Get("name"), q.Get("filename")); v != "" && req.Name == "" {
		req.Name = v
	}
	if q.Has("index") {
		n, err := strconv.Atoi(q.Get("index"))
		if err != nil {
			return req, badRequest("index must be an integer")
		}
		req.Index = &n
	}
	if q.Has("capacity") {
		n, err := strconv.Atoi(q.Get("capacity"))
		if err != nil {
			return req, badRequest("capacity must be an integer")
		}
		req.Capacity = &n
	}
	if req.Item == nil && q.Get("filename") != "" && needsItem(op) {
		size, _ := strconv.ParseInt(q.Get("size"), 10, 64)
		item := schema.NewItem(q.Get("filename"), q.Get("content_type"), size)
		req.Item = &item
	}
	if req.Item != nil {
		fillItem(req.Item)
	}
	return req, requireParams(req)
}

// requireParams rejects array operations whose position or size was left
// out, so it never defaults to 0.
func requireParams(req visualizer.Request) error {
	if req.Structure != schema.StructureArray {
		return nil
	}
	switch strings.ToLower(req.Operation) {
	case visualizer.OpDelete, visualizer.OpAccess:
		if req.Index == nil {
			return badRequest("array %s requires index", strings.ToLower(req.Operation))
		}
	case visualizer.OpResize:
		if req.Capacity == nil {
			return badRequest("array resize requires capacity")
		}
	}
	return nil
}

func needsItem(op string) bool {
	switch strings.ToLower(op) {
	case visualizer.OpInsert, visualizer.OpPush, visualizer.OpEnqueue:
		return true
	}
	return false
}

// uploadedItem builds an item from the "file" part. Only the metadata is
// kept.
func (s *Server) uploadedItem(w http.ResponseWriter, r *http.Request) (*schema.Item, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUpload)
	if err := r.ParseMultipartForm(s.deps.MaxUpload); err != nil {
		return nil, badRequest("parse upload: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, badRequest("file field is required")
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		sniff := make([]byte, 512)
		n, _ := io.ReadFull(file, sniff)
		contentType = http.DetectContentType(sniff[:n])
	}
	item := schema.NewItem(header.Filename, contentType, header.Size)
	return &item, nil
}

// fillItem completes an item that arrived without server-assigned fields.
func fillItem(item *schema.Item) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Status == "" {
		item.Status = schema.ItemStatusIdle
	}
	if item.UploadedAt.IsZero() {
		item.UploadedAt = time.Now().UTC()
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) handleState(kind schema.StructureKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.deps.Service.State(kind)
		if err != nil {
			writeError(w, err)
			return
		}
		s.respond(w, r, http.StatusOK, st)
	}
}

func (s *Server) handleClear(kind schema.StructureKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.deps.Service.Clear(r.Context(), kind); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": string(kind) + " cleared",
		})
	}
}
