// internal/service/order/interfaces/file_ingestor.go
package interfaces

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"orderflow/internal/pkg/lock"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/service/order/application"
	"orderflow/internal/service/order/codec"
)

// FileIngestor 从 NDJSON 文件逐行读取事件并驱动引擎。
// 空白行直接跳过；解码失败或引擎出错的记录打日志后跳过，
// 摄入继续处理下一条，单条失败不会中断整个文件。
type FileIngestor struct {
	processor *application.EventProcessor
	workers   int
	locker    lock.Locker
	tracer    trace.Tracer
}

// NewFileIngestor 创建文件摄入器。workers > 1 时并发处理，
// locker 负责按订单 ID 串行化，保持读-改-写语义。
func NewFileIngestor(processor *application.EventProcessor, workers int, locker lock.Locker) *FileIngestor {
	if workers < 1 {
		workers = 1
	}
	if locker == nil {
		locker = lock.NewKeyed()
	}
	return &FileIngestor{
		processor: processor,
		workers:   workers,
		locker:    locker,
		tracer:    otel.Tracer("order-projector"),
	}
}

// Ingest 处理整个文件。只有打开/读取文件本身的失败才返回 error，
// 它终止的是本次摄入，不是进程。
func (i *FileIngestor) Ingest(ctx context.Context, path string) error {
	ctx, span := i.tracer.Start(ctx, "ingest.File", trace.WithAttributes(
		attribute.String("ingest.path", path),
	))
	defer span.End()

	f, err := os.Open(path)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("path", path).Msg("failed to open events file")
		span.RecordError(err)
		return fmt.Errorf("open events file %s: %w", path, err)
	}
	defer f.Close()

	logger.Ctx(ctx).Info().Str("path", path).Int("workers", i.workers).Msg("ingesting events")

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if i.workers == 1 {
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			i.processRecord(ctx, []byte(line))
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(i.workers)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			record := []byte(line)
			g.Go(func() error {
				i.processRecord(gctx, record)
				return nil
			})
		}
		g.Wait()
	}

	if err := scanner.Err(); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("path", path).Msg("failed reading events file")
		span.RecordError(err)
		return fmt.Errorf("read events file %s: %w", path, err)
	}
	return nil
}

// processRecord 解码并应用一条记录，所有失败都就地吸收。
func (i *FileIngestor) processRecord(ctx context.Context, raw []byte) {
	evt, err := codec.Decode(raw)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to decode record, skipping")
		return
	}

	unlock, err := i.locker.Lock(evt.AggregateID())
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", evt.AggregateID()).
			Msg("failed to acquire order lock, skipping record")
		return
	}
	defer unlock()

	if _, err := i.processor.Process(ctx, evt); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("event_id", evt.Meta().EventID).
			Msg("failed to process record, skipping")
	}
}
