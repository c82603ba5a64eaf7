package push

import (
	"encoding/json"
	"fmt"

	"lms_platform/internal/pkg/config"
	"lms_platform/pkg/logger"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
	"go.uber.org/zap"
)

// PushService 站内通知推送 (回复提醒等)
type PushService interface {
	PushToAccount(accountID string, title, body string, extParameters map[string]string) error
	PushToAll(title, body string, extParameters map[string]string) error
}

type AliyunPushService struct {
	client *push.Client
	appKey int64
}

func NewAliyunPushService() (*AliyunPushService, error) {
	cfg := config.GlobalConfig.Push

	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, fmt.Errorf("push config is missing")
	}

	client, err := push.NewClientWithAccessKey(
		cfg.RegionID,
		cfg.AccessKeyID,
		cfg.AccessKeySecret,
	)
	if err != nil {
		return nil, err
	}

	return &AliyunPushService{
		client: client,
		appKey: cfg.AppKey,
	}, nil
}

func (s *AliyunPushService) PushToAccount(accountID string, title, body string, extParameters map[string]string) error {
	return s.sendPush("ACCOUNT", accountID, title, body, extParameters)
}

func (s *AliyunPushService) PushToAll(title, body string, extParameters map[string]string) error {
	return s.sendPush("ALL", "ALL", title, body, extParameters)
}

func (s *AliyunPushService) sendPush(target, targetValue, title, body string, extParameters map[string]string) error {
	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger(int(s.appKey))
	request.Target = target
	request.TargetValue = targetValue
	request.Title = title
	request.Body = body
	request.DeviceType = "ALL"
	request.PushType = "NOTICE"

	if len(extParameters) > 0 {
		extJSON, _ := json.Marshal(extParameters)
		request.AndroidExtParameters = string(extJSON)
		request.IOSExtParameters = string(extJSON)
	}

	_, err := s.client.Push(request)
	return err
}

// nopPushService 开发环境占位实现：只打日志不真正推送
type nopPushService struct{}

func (nopPushService) PushToAccount(accountID string, title, body string, ext map[string]string) error {
	logger.Log.Debug("push skipped (no push config)",
		zap.String("account", accountID), zap.String("title", title))
	return nil
}

func (nopPushService) PushToAll(title, body string, ext map[string]string) error {
	logger.Log.Debug("broadcast push skipped (no push config)", zap.String("title", title))
	return nil
}

// GlobalPushService 实例
var GlobalPushService PushService

// InitPushService 初始化推送服务；凭证缺失时退化为 nop 实现，不阻塞启动
func InitPushService() error {
	service, err := NewAliyunPushService()
	if err != nil {
		logger.Log.Warn("aliyun push unavailable, using nop push service", zap.Error(err))
		GlobalPushService = nopPushService{}
		return nil
	}
	GlobalPushService = service
	return nil
}
