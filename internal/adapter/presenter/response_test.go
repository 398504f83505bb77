package presenter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req_abc")

	WriteError(c, http.StatusNotFound, MessageNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, c.IsAborted())
	assert.JSONEq(t, `{"success":false,"error":404,"message":"resource not found","request_id":"req_abc"}`, w.Body.String())
}

func TestWriteAuthError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteAuthError(c, model.AuthPermissionDenied)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":401,"message":"unauthorized","kind":"PermissionDenied"}`, w.Body.String())
}

func TestNewDrinkListResponse_OmitsParts(t *testing.T) {
	drinks := []*model.Drink{
		{ID: 1, Title: "water", Recipe: []model.Ingredient{{Name: "water", Color: "blue", Parts: 1}}},
	}

	data, err := json.Marshal(NewDrinkListResponse(drinks))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"drinks":[{"id":1,"title":"water","recipe":[{"name":"water","color":"blue"}]}]}`, string(data))
}

func TestNewDrinkListResponse_EmptyIsArray(t *testing.T) {
	data, err := json.Marshal(NewDrinkListResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"drinks":[]}`, string(data))
}

func TestNewDrinkResponse_KeepsParts(t *testing.T) {
	drink := &model.Drink{ID: 5, Title: "tea", Recipe: []model.Ingredient{{Name: "water", Color: "blue", Parts: 1}}}

	data, err := json.Marshal(NewDrinkResponse(drink))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"drinks":{"id":5,"title":"tea","recipe":[{"name":"water","color":"blue","parts":1}]}}`, string(data))
}
