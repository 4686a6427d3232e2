package router

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"gorm.io/gorm"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/storage"
)

// RegisterRoutes 注册API路由
func RegisterRoutes(h *server.Hertz, applicationHandler *handler.ApplicationHandler, st *storage.Storage) {
	api := h.Group("/api/v1")
	applications := api.Group("/applications")

	// 实名投递，需要表单里携带applicant_id
	applications.POST("/apply", func(c context.Context, ctx *app.RequestContext) {
		req, err := readApplyForm(ctx)
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		req.ApplicantID = ctx.PostForm("applicant_id")
		if req.ApplicantID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "applicant_id不能为空"})
			return
		}
		respondApply(c, ctx, applicationHandler, req)
	})

	// 公开投递，不需要账号，联系方式从表单或简历中取
	applications.POST("/public-apply", func(c context.Context, ctx *app.RequestContext) {
		req, err := readApplyForm(ctx)
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		respondApply(c, ctx, applicationHandler, req)
	})

	// 投递列表，分页
	applications.GET("", func(c context.Context, ctx *app.RequestContext) {
		page := queryInt(ctx, "page", 1)
		pageSize := queryInt(ctx, "page_size", 50)
		records, err := applicationHandler.ListApplications(c, page, pageSize)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"applications": records, "page": page, "page_size": pageSize})
	})

	// 单条投递详情
	applications.GET("/:application_id", func(c context.Context, ctx *app.RequestContext) {
		record, err := applicationHandler.GetApplication(c, ctx.Param("application_id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "投递记录不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, record)
	})

	// 某岗位的全部投递，按分数倒序
	applications.GET("/job/:job_id", func(c context.Context, ctx *app.RequestContext) {
		records, err := applicationHandler.ListApplicationsByJob(c, ctx.Param("job_id"))
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"applications": records})
	})

	// 原始简历下载，返回对象存储的预签名链接
	applications.GET("/:application_id/resume", func(c context.Context, ctx *app.RequestContext) {
		url, err := applicationHandler.GetResumeDownloadURL(c, ctx.Param("application_id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "投递记录或简历文件不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"download_url": url})
	})

	// 某申请人的全部投递，按投递时间倒序
	applications.GET("/applicant/:applicant_id", func(c context.Context, ctx *app.RequestContext) {
		records, err := applicationHandler.ListApplicationsByApplicant(c, ctx.Param("applicant_id"))
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"applications": records})
	})

	// 状态推进
	applications.PUT("/:application_id/status", func(c context.Context, ctx *app.RequestContext) {
		var body struct {
			Status string `json:"status"`
		}
		if err := ctx.BindJSON(&body); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误"})
			return
		}
		err := applicationHandler.UpdateApplicationStatus(c, ctx.Param("application_id"), body.Status)
		switch {
		case err == nil:
			ctx.JSON(consts.StatusOK, utils.H{"status": body.Status})
		case errors.Is(err, handler.ErrInvalidStatus):
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "投递记录不存在"})
		default:
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		}
	})

	// 健康检查，顺带探测依赖的存储
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		health := utils.H{"status": "ok"}
		if st != nil && st.Redis != nil {
			if err := st.Redis.Ping(c); err != nil {
				health["redis"] = "unreachable"
			}
		}
		ctx.JSON(consts.StatusOK, health)
	})
}

// readApplyForm 解析multipart投递表单的公共部分
func readApplyForm(ctx *app.RequestContext) (handler.ApplyRequest, error) {
	var req handler.ApplyRequest

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return req, errors.New("简历文件未找到")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return req, errors.New("打开简历文件失败")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, errors.New("读取简历文件失败")
	}

	req.JobID = ctx.PostForm("job_id")
	req.ApplicantName = ctx.PostForm("applicant_name")
	req.Email = ctx.PostForm("email")
	req.Phone = ctx.PostForm("phone")
	req.SourceChannel = ctx.PostForm("source_channel")
	req.Filename = fileHeader.Filename
	req.FileBytes = data
	return req, nil
}

func respondApply(c context.Context, ctx *app.RequestContext, applicationHandler *handler.ApplicationHandler, req handler.ApplyRequest) {
	resp, err := applicationHandler.HandleApply(c, req)
	switch {
	case err == nil:
		ctx.JSON(consts.StatusOK, resp)
	case errors.Is(err, storage.ErrDuplicateApplication):
		ctx.JSON(consts.StatusConflict, utils.H{"error": "该岗位已投递过，请勿重复投递"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctx.JSON(consts.StatusNotFound, utils.H{"error": "岗位不存在"})
	default:
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
	}
}

func queryInt(ctx *app.RequestContext, key string, defaultValue int) int {
	n, err := strconv.Atoi(ctx.Query(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
