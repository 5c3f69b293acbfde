package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/pengguna"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", TestMode: true})

	p := pengguna.Pengguna{ID: "u1", NamaLengkap: "Admin", Email: "admin@lab.id"}
	args := l.prepare("boom", []interface{}{errors.New("cause"), p, map[string]interface{}{"k": 1}})
	assert.Len(t, args, 3, "the pengguna is attached as person, not as an extra")
	assert.Equal(t, "boom", args[0])

	l.Warn("skipped row", errors.New("conflict"), p)
	assert.Contains(t, buf.String(), "[WARN] skipped row")
	assert.Contains(t, buf.String(), "conflict")
	assert.NotContains(t, buf.String(), "admin@lab.id")
}
