package router

import (
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/stretchr/testify/assert"
)

// TestRegisterRoutesTable 验证路由表注册完整
// 路由闭包在注册阶段不会被调用，handler和storage可以传nil
func TestRegisterRoutesTable(t *testing.T) {
	h := server.New()
	RegisterRoutes(h, nil, nil)

	type route struct {
		method string
		path   string
	}
	registered := make(map[route]bool)
	for _, r := range h.Routes() {
		registered[route{r.Method, r.Path}] = true
	}

	expected := []route{
		{"POST", "/api/v1/applications/apply"},
		{"POST", "/api/v1/applications/public-apply"},
		{"GET", "/api/v1/applications"},
		{"GET", "/api/v1/applications/:application_id"},
		{"GET", "/api/v1/applications/job/:job_id"},
		{"GET", "/api/v1/applications/:application_id/resume"},
		{"GET", "/api/v1/applications/applicant/:applicant_id"},
		{"PUT", "/api/v1/applications/:application_id/status"},
		{"GET", "/api/v1/health"},
	}
	for _, want := range expected {
		assert.True(t, registered[want], "路由未注册: %s %s", want.method, want.path)
	}
}
