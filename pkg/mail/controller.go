package mail

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/gt-mail-gateway/pkg/api"
	"github.com/telekom/gt-mail-gateway/pkg/metrics"
	"github.com/telekom/gt-mail-gateway/pkg/system"
)

const (
	errMsgRequiredFields = "to, subject, and body are required"
	errMsgSendFailed     = "Failed to send mail"
)

// Controller serves /api/mail.
type Controller struct {
	log        *zap.SugaredLogger
	fetcher    InboxFetcher
	sender     Sender
	middleware []gin.HandlerFunc
}

func NewController(log *zap.SugaredLogger, fetcher InboxFetcher, sender Sender, middleware ...gin.HandlerFunc) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Controller{
		log:        log.Named("mail-controller"),
		fetcher:    fetcher,
		sender:     sender,
		middleware: middleware,
	}
}

func (mc *Controller) BasePath() string {
	return "mail"
}

func (mc *Controller) Handlers() []gin.HandlerFunc {
	return mc.middleware
}

func (mc *Controller) Register(rg *gin.RouterGroup) error {
	rg.GET("", api.InstrumentedHandler("handleGetMail", mc.handleGetMail))
	rg.POST("", api.InstrumentedHandler("handlePostMail", mc.handlePostMail))
	return nil
}

func (mc *Controller) handleGetMail(c *gin.Context) {
	log := system.GetReqLogger(c, mc.log)
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Recovered panic while listing mail", "panic", r)
			metrics.APIRecoveredPanics.WithLabelValues("handleGetMail").Inc()
			c.JSON(http.StatusOK, InboxResponse{Messages: []Mail{}, Available: false})
		}
	}()

	identity, _ := ResolveIdentity(c.Query("agent"), c.Query("rig"))

	// The gt process runs to completion (or its own timeout) even if the client goes away.
	ctx := context.WithoutCancel(c.Request.Context())
	messages := mc.fetcher.Inbox(ctx, identity)
	if messages == nil {
		messages = []Mail{}
	}

	c.JSON(http.StatusOK, InboxResponse{Messages: messages, Available: true})
}

func (mc *Controller) handlePostMail(c *gin.Context) {
	log := system.GetReqLogger(c, mc.log)
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Recovered panic while sending mail", "panic", r)
			metrics.APIRecoveredPanics.WithLabelValues("handlePostMail").Inc()
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: errMsgSendFailed})
		}
	}()

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnw("Invalid mail send request body", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: errMsgSendFailed})
		return
	}
	if req.To == "" || req.Subject == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: errMsgRequiredFields})
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	if !mc.sender.Send(ctx, req.To, req.Subject, req.Body) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: errMsgSendFailed})
		return
	}

	c.JSON(http.StatusCreated, SendResponse{Success: true})
}
