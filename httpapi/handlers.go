package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/export"
	"github.com/lvillar/docsmith/handoff"
	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/preview"
	"github.com/lvillar/docsmith/qrcode"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/suggest"
	"github.com/lvillar/docsmith/templates"
	"github.com/lvillar/docsmith/workspace"
)

func (s *Server) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": templates.Catalog()})
}

func (s *Server) sample(c *gin.Context) {
	kind, err := docsmith.ParseKind(c.Param("kind"))
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	rec, err := record.Sample(kind, s.now())
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

type createSessionRequest struct {
	Kind        string          `json:"kind"`
	Template    string          `json:"template"`
	AccentColor string          `json:"accentColor"`
	Record      json.RawMessage `json:"record"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "The request body is not valid JSON.")
		return
	}
	kind, err := docsmith.ParseKind(req.Kind)
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	draft := workspace.Draft{Template: req.Template, Accent: req.AccentColor}
	if len(req.Record) > 0 && string(req.Record) != "null" {
		rec, err := record.Decode(kind, req.Record)
		if err != nil {
			invalidRequest(c, "The document data could not be read.")
			return
		}
		draft.Record = rec
	}

	id := s.node.Generate().String()
	sess := &session{id: id, lastUsed: s.now()}
	ws, err := s.studio.NewWorkspace(kind, workspace.WithDraft(draft))
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	sess.ws = ws
	sess.ctl = s.studio.Controller(ws, attachmentSink{}, export.WithNotifier(sess))
	s.sessions.add(sess)
	logger.FromContext(c.Request.Context()).Info("session created",
		zap.String("session", id), zap.String("kind", string(kind)))

	s.respondSession(c, http.StatusCreated, sess)
}

func (s *Server) respondSession(c *gin.Context, status int, sess *session) {
	v, err := sess.view()
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	c.JSON(status, gin.H{"data": v})
}

func (s *Server) session(c *gin.Context) (*session, bool) {
	sess, err := s.sessions.get(c.Param("id"), s.now())
	if err != nil {
		abortWithError(c, err, "")
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	s.respondSession(c, http.StatusOK, sess)
}

type updateSessionRequest struct {
	Template    *string         `json:"template"`
	AccentColor *string         `json:"accentColor"`
	Record      json.RawMessage `json:"record"`
}

func (s *Server) updateSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "The request body is not valid JSON.")
		return
	}
	var rec record.Record
	if len(req.Record) > 0 && string(req.Record) != "null" {
		r, err := record.Decode(sess.ws.Kind(), req.Record)
		if err != nil {
			invalidRequest(c, "The document data could not be read.")
			return
		}
		rec = r
	}
	sess.ws.Edit(func(d *workspace.Draft) {
		if rec != nil {
			d.Record = rec
		}
		if req.Template != nil {
			d.Template = *req.Template
		}
		if req.AccentColor != nil {
			d.Accent = *req.AccentColor
		}
	})
	s.respondSession(c, http.StatusOK, sess)
}

func (s *Server) deleteSession(c *gin.Context) {
	if !s.sessions.remove(c.Param("id")) {
		abortWithError(c, errSessionNotFound, "")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setView(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		View string `json:"view"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "The request body is not valid JSON.")
		return
	}
	v, err := workspace.ParseView(req.View)
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	sess.ws.SetView(v)
	s.respondSession(c, http.StatusOK, sess)
}

func (s *Server) setSide(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		Side string `json:"side"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "The request body is not valid JSON.")
		return
	}
	if _, err := sess.ws.Flip(req.Side); err != nil {
		abortWithError(c, err, "")
		return
	}
	s.respondSession(c, http.StatusOK, sess)
}

// attachmentSink hands artifacts back to the handler, which streams them as
// a download.
type attachmentSink struct{}

func (attachmentSink) Deliver(ctx context.Context, a *docsmith.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "attachment:" + a.Name, nil
}

func (s *Server) exportSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	format, err := docsmith.ParseFormat(c.Param("format"))
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	res, err := sess.ctl.Export(c.Request.Context(), s.studio.ExportOptions(sess.ws.Kind(), format)...)
	if err != nil {
		abortWithError(c, err, format)
		return
	}
	attachment(c, res.Artifact)
}

func attachment(c *gin.Context, a *docsmith.Artifact) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	c.Data(http.StatusOK, a.MIMEType, a.Data)
}

func (s *Server) stashPreview(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	d := sess.ws.Draft()
	p, err := handoff.NewPayload(d.Record, d.Template, d.Accent)
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	if err := s.studio.Handoff().Stash(c.Request.Context(), sess.id, p); err != nil {
		abortWithError(c, err, "")
		return
	}
	q := url.Values{"session": {sess.id}}
	c.JSON(http.StatusCreated, gin.H{"url": "/preview/" + string(p.Kind) + "?" + q.Encode()})
}

func (s *Server) showPreview(c *gin.Context) {
	kind, err := docsmith.ParseKind(c.Param("kind"))
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	var opts []preview.Option
	if auto, _ := strconv.ParseBool(c.Query("print")); auto {
		opts = append(opts, preview.WithAutoPrint())
	}
	var buf bytes.Buffer
	status := http.StatusOK
	if err := s.studio.Preview(c.Request.Context(), &buf, c.Query("session"), kind, opts...); err != nil {
		if !errors.Is(err, preview.ErrNoPreviewData) {
			abortWithError(c, err, "")
			return
		}
		_ = c.Error(err)
		status = http.StatusNotFound
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

type suggestionsRequest struct {
	InvoiceDraft string          `json:"invoiceDraft"`
	Invoice      *record.Invoice `json:"invoice"`
}

func (s *Server) suggestions(c *gin.Context) {
	var req suggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "The request body is not valid JSON.")
		return
	}
	draft := req.InvoiceDraft
	if strings.TrimSpace(draft) == "" {
		draft = suggest.Draft(req.Invoice)
	}
	items := s.studio.Suggester().Suggest(c.Request.Context(), draft)
	if items == nil {
		items = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": items})
}

func (s *Server) qrcode(c *gin.Context) {
	var query struct {
		Data   string `form:"data"`
		Size   int    `form:"size"`
		Type   string `form:"type"`
		Format string `form:"format"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		invalidRequest(c, "The QR code settings are not valid.")
		return
	}
	sym, err := qrcode.ParseSymbology(query.Type)
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	opts := []qrcode.Option{qrcode.WithSymbology(sym), qrcode.WithSize(query.Size)}
	generate := qrcode.Generate
	if strings.EqualFold(query.Format, string(docsmith.FormatPDF)) {
		generate = qrcode.Label
	}
	start := time.Now()
	a, err := generate(query.Data, opts...)
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	logger.FromContext(c.Request.Context()).Debug("qr code generated",
		zap.String("type", string(sym)), zap.Int("bytes", a.Size()), zap.Duration("took", time.Since(start)))
	attachment(c, a)
}
