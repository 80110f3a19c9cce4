package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-chat-orderflow/internal/whatsapp"
)

func TestWebhook_Valid(t *testing.T) {
	v := New()

	w := whatsapp.Webhook{Object: whatsapp.ObjectBusinessAccount}
	if err := v.Struct(w); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestWebhook_ForeignObjectIsWellFormed(t *testing.T) {
	v := New()

	w := whatsapp.Webhook{Object: "instagram"}
	if err := v.Struct(w); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestWebhook_MissingObject(t *testing.T) {
	v := New()

	if err := v.Struct(whatsapp.Webhook{}); err == nil {
		t.Fatal("expected validation error for missing object, got nil")
	}
}

func TestOrderURI_RequiresUUID(t *testing.T) {
	v := New()

	if err := v.Struct(OrderURI{OrderID: "not-a-uuid"}); err == nil {
		t.Fatal("expected validation error for malformed id, got nil")
	}
	if err := v.Struct(OrderURI{OrderID: "3f1c7a52-8d4e-4b7a-9c1e-2f6b8a0d4e11"}); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestBindAndValidate_WritesFailStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := New()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"entry":[]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var w whatsapp.Webhook
	if err := BindAndValidate(c, &w, v, http.StatusOK); err == nil {
		t.Fatal("expected error, got nil")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "validation_failed") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"Webhook.object"`) {
		t.Fatalf("expected json field name in errors, got: %s", rec.Body.String())
	}
}

func TestBindQueryAndValidate_MissingChallenge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := New()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=x", nil)

	var q VerifyQuery
	if err := BindQueryAndValidate(c, &q, v, http.StatusForbidden); err == nil {
		t.Fatal("expected error, got nil")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"VerifyQuery.hub.challenge"`) {
		t.Fatalf("expected query param name in errors, got: %s", rec.Body.String())
	}
}
