package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edgard/plainbot/internal/text"
)

// TextRequest is the body of the convert, format and list endpoints.
type TextRequest struct {
	Text     string `json:"text"`
	Renumber bool   `json:"renumber"`
}

// TextResponse carries a normalized text.
type TextResponse struct {
	Text string `json:"text"`
}

// SplitRequest is the body of the split endpoint. A zero limit returns the
// whole text as one chunk.
type SplitRequest struct {
	Text  string `json:"text"`
	Limit int    `json:"limit" binding:"gte=0"`
}

// SplitResponse lists the chunks of a split text.
type SplitResponse struct {
	Chunks []string `json:"chunks"`
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) transform(mode text.Mode, fn func(TextRequest) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		out := fn(req)
		s.metrics.ObserveNormalization(string(mode), req.Text, out)
		c.JSON(http.StatusOK, TextResponse{Text: out})
	}
}

func (s *Server) convert(c *gin.Context) {
	s.transform(text.ModePlain, func(req TextRequest) string {
		return text.Convert(req.Text)
	})(c)
}

func (s *Server) format(c *gin.Context) {
	s.transform(text.ModeResponse, func(req TextRequest) string {
		return text.FormatResponse(req.Text)
	})(c)
}

func (s *Server) list(c *gin.Context) {
	s.transform(text.ModeList, func(req TextRequest) string {
		var opts []text.ListOption
		if req.Renumber {
			opts = append(opts, text.WithRenumbering())
		}
		return text.FormatList(req.Text, opts...)
	})(c)
}

func (s *Server) split(c *gin.Context) {
	var req SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	chunks := text.Split(req.Text, req.Limit)
	if chunks == nil {
		chunks = []string{}
	}
	c.JSON(http.StatusOK, SplitResponse{Chunks: chunks})
}
