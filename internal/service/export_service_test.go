package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-portal-api/internal/repository"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/storage"
)

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exports := repository.NewExportRepository(repository.NewMemoryDocumentStore())
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	reports := NewReportService(reportLister(), time.UTC)
	return NewExportService(reports, files, exports, signer, "/api/v1/", nil)
}

func tokenFrom(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

func TestExportDailyCSVRoundTrip(t *testing.T) {
	svc := newExportFixture(t)
	ctx := context.Background()

	record, err := svc.ExportDaily(ctx, ExportRequest{Date: "2024-06-10", Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "csv", record.Format)
	assert.Equal(t, "2024-06-10", record.Date)
	assert.True(t, strings.HasPrefix(record.DownloadURL, "/api/v1/exports/"))
	assert.True(t, record.ExpiresAt.After(time.Now()))

	download, err := svc.Open(ctx, tokenFrom(record.DownloadURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "text/csv", download.ContentType)
	assert.True(t, strings.HasPrefix(download.Filename, "daily_2024-06-10_"))

	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Kind,Total,Pending,Open,Resolved,Denied,Resolution %")
	assert.Contains(t, string(body), "Complaint,4,1,1,1,1,25.00")
}

func TestExportDailyPDF(t *testing.T) {
	svc := newExportFixture(t)
	ctx := context.Background()

	record, err := svc.ExportDaily(ctx, ExportRequest{Date: "2024-06-10", Format: "pdf"})
	require.NoError(t, err)

	download, err := svc.Open(ctx, tokenFrom(record.DownloadURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "application/pdf", download.ContentType)
	head := make([]byte, 4)
	_, err = io.ReadFull(download.File, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newExportFixture(t)
	_, err := svc.ExportDaily(context.Background(), ExportRequest{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportOpenRejectsTamperedToken(t *testing.T) {
	svc := newExportFixture(t)
	ctx := context.Background()
	record, err := svc.ExportDaily(ctx, ExportRequest{Date: "2024-06-10", Format: "csv"})
	require.NoError(t, err)

	token := tokenFrom(record.DownloadURL)
	last := token[len(token)-1]
	swap := byte('0')
	if last == '0' {
		swap = '1'
	}
	_, err = svc.Open(ctx, token[:len(token)-1]+string(swap))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Open(ctx, "not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
