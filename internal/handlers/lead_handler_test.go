package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/gorillago3318/portal/internal/commission"
	"github.com/gorillago3318/portal/internal/models"
	leadsvc "github.com/gorillago3318/portal/internal/services/lead"
	"github.com/gorillago3318/portal/internal/workflow"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestTransitionErrorMapping(t *testing.T) {
	h := NewLeadHandler(nil)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", leadsvc.ErrLeadNotFound, http.StatusNotFound},
		{"forbidden", workflow.ErrForbidden, http.StatusForbidden},
		{"unknown status", workflow.ErrUnknownStatus, http.StatusBadRequest},
		{"missing loan amount", workflow.ErrMissingLoanAmount, http.StatusUnprocessableEntity},
		{"unassigned lead", workflow.ErrUnassignedLead, http.StatusUnprocessableEntity},
		{"negative loan amount", commission.ErrInvalidLoanAmount, http.StatusUnprocessableEntity},
		{"illegal transition", &workflow.InvalidTransitionError{
			From: models.LeadStatusNew, To: models.LeadStatusAccepted,
		}, http.StatusUnprocessableEntity},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		c, w := newTestContext()
		h.transitionError(c, tc.err)
		assert.Equal(t, tc.want, w.Code, tc.name)
	}
}
