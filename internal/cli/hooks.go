package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapwright/pkg/observability"
)

// logHooks reports engine, export and cache events at debug level.
// They are installed by --verbose.
type logHooks struct {
	logger *log.Logger
}

func (c *CLI) installHooks() {
	h := &logHooks{logger: c.Logger.WithPrefix(appName + "/trace")}
	observability.SetEngineHooks(h)
	observability.SetExportHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnMutation(op, id string) {
	h.logger.Debug("mutation", "op", op, "id", id)
}

func (h *logHooks) OnHistory(action, op string, err error) {
	if err != nil {
		h.logger.Warn(action+" discarded command", "op", op, "err", err)
		return
	}
	h.logger.Debug(action, "op", op)
}

func (h *logHooks) OnExportStart(_ context.Context, format string, nodeCount int) {
	h.logger.Debug("export", "format", format, "nodes", nodeCount)
}

func (h *logHooks) OnExportComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("export failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("exported", "format", format, "bytes", size, "took", d)
}

func (h *logHooks) OnImport(_ context.Context, format string, nodeCount, dropped int, err error) {
	h.logger.Debug("imported", "format", format, "nodes", nodeCount, "dropped", dropped, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
