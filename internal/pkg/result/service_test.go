package result

import (
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/minio/minio-go/v7"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/test"
	"github.com/prismwriting/prism/internal/pkg/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	filerMock *mocks.Filer
	storeMock *mocks.JobStore
	tData     *Data
	tEcho     *echo.Echo
)

func initTest(t *testing.T) {
	filerMock = &mocks.Filer{}
	storeMock = &mocks.JobStore{}
	tData = &Data{Reader: filerMock, Store: storeMock}
	tEcho = initRoutes(tData)
	filerMock.On("LoadFile", mock.Anything, "1/My_Talk.mp4").Return(newTestFile("video"), nil)
	filerMock.On("LoadFile", mock.Anything, "1/document.md").Return(newTestFile("# Doc"), nil)
	storeMock.On("Get", mock.Anything, "1").Return(&persistence.Job{ID: "1",
		Video:    persistence.VideoFile{FileName: "1/My_Talk.mp4"},
		Document: &persistence.Document{FileName: "1/document.md"}}, nil)
}

func TestWrongPath(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/invalid", nil)
	test.Code(t, tEcho, req, http.StatusNotFound)
}

func TestWrongMethod(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodPost, "/video/file/1", nil)
	test.Code(t, tEcho, req, http.StatusMethodNotAllowed)
}

func Test_Video(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/video/file/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.Equal(t, "video", test.RStr(t, resp.Body))
	assert.Equal(t, "attachment; filename=My_Talk.mp4", resp.Header().Get("Content-Disposition"))
}

func Test_Document(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/video/document/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.Equal(t, "# Doc", test.RStr(t, resp.Body))
	assert.Equal(t, "attachment; filename=document.md", resp.Header().Get("Content-Disposition"))
}

func Test_Head(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodHead, "/video/document/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.Equal(t, "", test.RStr(t, resp.Body))
	assert.Equal(t, "5", resp.Header().Get("Content-Length"))
}

func Test_NoJob(t *testing.T) {
	initTest(t)
	storeMock.On("Get", mock.Anything, "2").Return(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/video/file/2", nil)
	resp := test.Code(t, tEcho, req, http.StatusNotFound)
	assert.Contains(t, test.RStr(t, resp.Body), "Job not found")
}

func Test_NoDocument(t *testing.T) {
	initTest(t)
	storeMock.On("Get", mock.Anything, "2").Return(&persistence.Job{ID: "2"}, nil)
	req := httptest.NewRequest(http.MethodGet, "/video/document/2", nil)
	test.Code(t, tEcho, req, http.StatusNotFound)
}

func Test_ForeignFile(t *testing.T) {
	initTest(t)
	storeMock.On("Get", mock.Anything, "2").Return(&persistence.Job{ID: "2",
		Video: persistence.VideoFile{FileName: "1/My_Talk.mp4"}}, nil)
	req := httptest.NewRequest(http.MethodGet, "/video/file/2", nil)
	test.Code(t, tEcho, req, http.StatusNotFound)
	assert.Empty(t, filerMock.Calls)
}

func Test_StoreFail(t *testing.T) {
	initTest(t)
	storeMock.On("Get", mock.Anything, "2").Return(nil, fmt.Errorf("olia"))
	req := httptest.NewRequest(http.MethodGet, "/video/file/2", nil)
	test.Code(t, tEcho, req, http.StatusInternalServerError)
}

func Test_NoFile(t *testing.T) {
	initTest(t)
	filerMock.ExpectedCalls = nil
	filerMock.On("LoadFile", mock.Anything, mock.Anything).Return(nil, minio.ErrorResponse{StatusCode: http.StatusNotFound})
	req := httptest.NewRequest(http.MethodGet, "/video/file/1", nil)
	test.Code(t, tEcho, req, http.StatusNotFound)
}

func Test_FileFail(t *testing.T) {
	initTest(t)
	filerMock.ExpectedCalls = nil
	filerMock.On("LoadFile", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia"))
	req := httptest.NewRequest(http.MethodGet, "/video/file/1", nil)
	test.Code(t, tEcho, req, http.StatusInternalServerError)
}

func Test_Live(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	test.Code(t, tEcho, req, http.StatusOK)
}

func Test_validate(t *testing.T) {
	initTest(t)
	assert.Nil(t, validate(tData))
	assert.NotNil(t, validate(&Data{Reader: filerMock}))
	assert.NotNil(t, validate(&Data{Store: storeMock}))
}

type testFile struct {
	*strings.Reader
}

func newTestFile(s string) *testFile {
	return &testFile{Reader: strings.NewReader(s)}
}

func (f *testFile) Close() error {
	return nil
}

func (f *testFile) Stat() (fs.FileInfo, error) {
	return &testStat{size: f.Size()}, nil
}

type testStat struct {
	size int64
}

func (s *testStat) IsDir() bool        { return false }
func (s *testStat) ModTime() time.Time { return time.Now() }
func (s *testStat) Mode() fs.FileMode  { return fs.ModeTemporary }
func (s *testStat) Name() string       { return "f" }
func (s *testStat) Size() int64        { return s.size }
func (s *testStat) Sys() any           { return nil }
