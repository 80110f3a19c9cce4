package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imrishuroy/go-chat-orderflow/internal/crm"
)

type stubFetcher map[string]string

func (s stubFetcher) Fetch(ctx context.Context, ref crm.Ref) ([]byte, error) {
	body, ok := s[ref.Path]
	if !ok {
		return nil, errors.New("status 404")
	}
	return []byte(body), nil
}

func TestSelectRefs(t *testing.T) {
	all := crm.DefaultRefs()
	assert.Equal(t, all, selectRefs(all, nil))

	got := selectRefs(all, []string{"Cities", "payment-options"})
	if assert.Len(t, got, 2) {
		assert.Equal(t, "cities-list", got[0].Path)
		assert.Equal(t, "payment-options", got[1].Path)
	}
	assert.Empty(t, selectRefs(all, []string{"warehouses"}))
}

func TestRun(t *testing.T) {
	refs := []crm.Ref{
		{Name: "cities", Path: "cities-list"},
		{Name: "cashboxes", Path: "cashboxes"},
	}
	var out bytes.Buffer
	failed := run(context.Background(), stubFetcher{"cities-list": `[{"id": 1, "name": "Тараз"}]`}, refs, &out)

	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "=== cities (cities-list) ===\n[{\"id\": 1, \"name\": \"Тараз\"}]")
	assert.Contains(t, out.String(), "=== cashboxes (cashboxes) ===\nerror: status 404")
}
