package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"english_analyzer/analyzer"
	"english_analyzer/config"
)

type analyzeReq struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

type renderResp struct {
	Model analyzer.RenderModel `json:"model"`
	HTML  string               `json:"html,omitempty"`
}

type analyzeResp struct {
	Success bool       `json:"success"`
	Result  any        `json:"result"`
	Render  renderResp `json:"render"`
}

type errorResp struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) fail(c *gin.Context, status int, resp errorResp) {
	resp.Success = false
	resp.RequestID = c.GetString(ctxKeyRequestID)
	c.JSON(status, resp)
}

// handleAnalyze 分析单词或句子
func (s *Server) handleAnalyze(c *gin.Context) {
	log := requestLogger(c, s.logger)

	var req analyzeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, errorResp{Error: "请求格式无效"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.fail(c, http.StatusBadRequest, errorResp{Error: "请提供要分析的文本"})
		return
	}
	mode, err := analyzer.ParseMode(req.Mode)
	if err != nil {
		s.fail(c, http.StatusBadRequest, errorResp{Error: "无效的分析模式，仅支持 word 或 sentence"})
		return
	}
	areq, err := analyzer.NewRequest(req.Text, mode)
	if err != nil {
		s.fail(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}

	res, err := s.agent.Analyze(c.Request.Context(), areq)
	if err != nil {
		ae, ok := analyzer.AsError(err)
		if !ok {
			log.Error("analysis failed", "error", err)
			s.fail(c, http.StatusInternalServerError, errorResp{Error: "分析失败，请稍后重试"})
			return
		}
		s.fail(c, http.StatusInternalServerError, errorResp{
			Error: ae.UserMessage(),
			Kind:  string(ae.Kind),
			Field: ae.Field,
		})
		return
	}

	html, err := res.Render.HTML()
	if err != nil {
		log.Warn("render html failed", "error", err)
	}
	c.JSON(http.StatusOK, analyzeResp{
		Success: true,
		Result:  res.Analysis(),
		Render:  renderResp{Model: res.Render, HTML: html},
	})
}

func (s *Server) handleConfigGet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "config": s.cfg.View()})
}

func (s *Server) handleConfigUpdate(c *gin.Context) {
	log := requestLogger(c, s.logger)

	var in config.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, http.StatusBadRequest, errorResp{Error: "请求格式无效"})
		return
	}
	if err := s.cfg.Save(in); err != nil {
		if errors.Is(err, config.ErrInvalidSettings) {
			s.fail(c, http.StatusBadRequest, errorResp{Error: err.Error()})
			return
		}
		log.Error("save settings failed", "error", err)
		s.fail(c, http.StatusInternalServerError, errorResp{Error: "保存配置失败"})
		return
	}
	log.Info("settings updated", "config", s.cfg.Generation())
	c.JSON(http.StatusOK, gin.H{"success": true, "config": s.cfg.View()})
}
