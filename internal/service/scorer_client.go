package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/config"
	"github.com/krunal16-c/saskhack/internal/risk"
)

// ── 评分服务错误 ──

var (
	ErrScorerUnavailable = errors.New("风险评分服务不可用")
	ErrScorerBadStatus   = errors.New("风险评分服务返回非 2xx 状态")
	ErrScorerMalformed   = errors.New("风险评分服务响应格式错误")
)

// RiskScorer 外部 ML 风险评分
type RiskScorer interface {
	Score(ctx context.Context, fv risk.FeatureVector) (int, error)
}

// scorerClient 基于 resty 的评分服务客户端
// 不重试：超时即失败，由调用方回退到规则评分
type scorerClient struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewScorerClient 创建评分客户端；未配置 URL 时返回 nil
func NewScorerClient(cfg *config.ScorerConfig, logger *zap.Logger) RiskScorer {
	if cfg.URL == "" {
		return nil
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("X-API-Key", cfg.APIKey)
	}

	return &scorerClient{httpClient: client, url: cfg.URL, logger: logger}
}

func (c *scorerClient) Score(ctx context.Context, fv risk.FeatureVector) (int, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(fv).
		Post(c.url)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("%w: %d", ErrScorerBadStatus, resp.StatusCode())
	}

	score, err := parseRiskScore(resp.Body())
	if err != nil {
		return 0, err
	}
	c.logger.Debug("外部评分完成", zap.Int("risk_score", score), zap.Duration("elapsed", resp.Time()))
	return score, nil
}

// parseRiskScore 解析 {"risk_score": <number>}，四舍五入为整数
// 缺失、非数值或超出 [0,100] 均视为格式错误
func parseRiskScore(body []byte) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScorerMalformed, err)
	}

	raw, ok := payload["risk_score"]
	if !ok {
		return 0, fmt.Errorf("%w: 缺少 risk_score", ErrScorerMalformed)
	}
	num, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: risk_score 不是数值", ErrScorerMalformed)
	}
	v, err := num.Float64()
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: risk_score 无法解析", ErrScorerMalformed)
	}
	if v < risk.MinScore || v > risk.MaxScore {
		return 0, fmt.Errorf("%w: risk_score=%v 超出范围", ErrScorerMalformed, v)
	}

	return int(math.Round(v)), nil
}
