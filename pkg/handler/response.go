package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"custodial_swap_back/internal/custody"
	"custodial_swap_back/pkg/service"
)

type Error struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, Error{Code: verr.Code, Message: verr.Message})
		return
	}

	var cerr *custody.CustodyError
	if errors.As(err, &cerr) {
		// Key/data corruption; escalate loudly, say nothing specific to the caller.
		logrus.WithError(cerr).Error("custody failure")
		c.AbortWithStatusJSON(http.StatusInternalServerError, Error{Code: "custody_failure", Message: "internal error"})
		return
	}

	switch {
	case errors.Is(err, service.ErrNoWalletAvailable):
		c.AbortWithStatusJSON(http.StatusConflict, Error{Code: "no_wallet_available", Message: err.Error()})
		return
	case errors.Is(err, service.ErrNoWalletAssigned):
		c.AbortWithStatusJSON(http.StatusNotFound, Error{Code: "no_wallet_assigned", Message: err.Error()})
		return
	}

	var ierr *service.IntegrationError
	if errors.As(err, &ierr) {
		logrus.WithError(ierr).Error("upstream failure")
		c.AbortWithStatusJSON(http.StatusBadGateway, Error{Code: "upstream_unavailable", Message: "upstream failure"})
		return
	}

	logrus.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Error{Message: err.Error()})
}

func wrapOkJSON(c *gin.Context, response map[string]interface{}) {
	c.JSON(http.StatusOK, response)
}
