package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cep360-payroll/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(21, 2, 10)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 2, meta.Page)

	assert.Equal(t, 0, NewPaginationMeta(5, 1, 0).TotalPages)
}

func TestPartialFailure_KeepsData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	docErr := apperror.New(apperror.CodeDocumentFailed, "render failed", http.StatusBadGateway)
	PartialFailure(c, docErr, map[string]int{"total": 20500})

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body struct {
		Ok    bool           `json:"ok"`
		Data  map[string]int `json:"data"`
		Error ErrorBody      `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Ok)
	assert.Equal(t, 20500, body.Data["total"])
	assert.Equal(t, apperror.CodeDocumentFailed, body.Error.Code)
}
