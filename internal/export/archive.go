// Package export archives the rows of a finished batch pass as parquet objects.
//
// Two objects are written per pass under a Hive-style prefix:
//
//	day_gb=WEEK/year=2024/no=45/farm_reports.parquet
//	day_gb=WEEK/year=2024/no=45/topic_rows.parquet
//
// Re-running a pass overwrites them.
package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"gorm.io/gorm"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/store"
	"github.com/tigerroll/weekreport/pkg/adapter/storage"
	"github.com/tigerroll/weekreport/pkg/support/exception"
	"github.com/tigerroll/weekreport/pkg/support/logger"
)

const moduleName = "export"

const (
	farmObject  = "farm_reports.parquet"
	topicObject = "topic_rows.parquet"
)

// Archiver writes pass archives to an object store.
type Archiver struct {
	store       *store.Store
	objects     storage.Store
	compression parquet.CompressionCodec
}

// NewArchiver creates an Archiver reading from db and writing to objects. compression is one of
// SNAPPY, GZIP, NONE.
func NewArchiver(db *gorm.DB, objects storage.Store, compression string) (*Archiver, error) {
	codec, err := compressionCodec(compression)
	if err != nil {
		return nil, exception.NewReportError(moduleName, "invalid archive compression", err)
	}
	return &Archiver{store: store.New(db), objects: objects, compression: codec}, nil
}

// Prefix returns the object prefix of a period.
func Prefix(p model.ReportingPeriod) string {
	return fmt.Sprintf("day_gb=%s/year=%d/no=%02d", p.DayGb, p.Year, p.No)
}

// ArchivePass writes the farm reports and topic rows of result's job. Passes that wrote nothing
// (skipped, dry run) are ignored.
func (a *Archiver) ArchivePass(ctx context.Context, result *model.JobResult) error {
	if result == nil || result.MasterSeq == 0 {
		return nil
	}
	prefix := Prefix(result.Period)

	recs, err := a.store.FarmReports(ctx, result.MasterSeq)
	if err != nil {
		return err
	}
	rows, err := a.store.JobTopicRows(ctx, result.MasterSeq)
	if err != nil {
		return err
	}

	var errs error
	farms := make([]farmRecord, len(recs))
	for i, r := range recs {
		farms[i] = toFarmRecord(r)
	}
	if err := a.write(ctx, path.Join(prefix, farmObject), farms, new(farmRecord)); err != nil {
		errs = multierror.Append(errs, err)
	}
	topics := make([]topicRecord, len(rows))
	for i, r := range rows {
		topics[i] = toTopicRecord(r)
	}
	if err := a.write(ctx, path.Join(prefix, topicObject), topics, new(topicRecord)); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs == nil {
		logger.Infof("Archived job %d (%d farms, %d rows) to %s:%s.", result.MasterSeq, len(farms), len(topics), a.objects.Type(), prefix)
	}
	return errs
}

func (a *Archiver) write(ctx context.Context, objectName string, records any, prototype any) error {
	buf, err := encode(records, prototype, a.compression)
	if err != nil {
		return exception.NewReportError(moduleName, fmt.Sprintf("failed to encode %s", objectName), err)
	}
	if err := a.objects.Upload(ctx, objectName, buf, "application/octet-stream"); err != nil {
		return exception.NewReportError(moduleName, fmt.Sprintf("failed to upload %s", objectName), err)
	}
	return nil
}

// encode writes records (a slice of the prototype's element type) as one parquet file.
func encode(records any, prototype any, codec parquet.CompressionCodec) (buf *bytes.Buffer, err error) {
	buf = new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, prototype, 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = codec

	switch rs := records.(type) {
	case []farmRecord:
		for _, r := range rs {
			if err := pw.Write(r); err != nil {
				return nil, err
			}
		}
	case []topicRecord:
		for _, r := range rs {
			if err := pw.Write(r); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported record type %T", records)
	}

	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("parquet writer panicked: %v", r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	return buf, nil
}

func compressionCodec(name string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(name) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	}
	return 0, fmt.Errorf("unsupported compression type: %s", name)
}
