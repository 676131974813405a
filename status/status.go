package status

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// Status 请求的最终结果, 成功/失败都通过它携带http状态码
type Status struct {
	Code int
}

var (
	OK                   = Status{Code: http.StatusOK}
	Created              = Status{Code: http.StatusCreated}
	NoContent            = Status{Code: http.StatusNoContent}
	MultiStatus          = Status{Code: http.StatusMultiStatus}
	BadRequest           = Status{Code: http.StatusBadRequest}
	Forbidden            = Status{Code: http.StatusForbidden}
	NotFound             = Status{Code: http.StatusNotFound}
	MethodNotAllowed     = Status{Code: http.StatusMethodNotAllowed}
	Conflict             = Status{Code: http.StatusConflict}
	PreconditionFailed   = Status{Code: http.StatusPreconditionFailed}
	UnsupportedMediaType = Status{Code: http.StatusUnsupportedMediaType}
	InternalServerError  = Status{Code: http.StatusInternalServerError}
	NotImplemented       = Status{Code: http.StatusNotImplemented}
	BadGateway           = Status{Code: http.StatusBadGateway}
	InsufficientStorage  = Status{Code: http.StatusInsufficientStorage}
)

// reason phrases that differ from (or are missing in) net/http
var reasonOverride = map[int]string{
	http.StatusMultiStatus: "Multi-Status",
}

func Text(code int) string {
	if t, ok := reasonOverride[code]; ok {
		return t
	}
	if t := http.StatusText(code); len(t) != 0 {
		return t
	}
	return "Unknown"
}

func (s Status) Text() string {
	return Text(s.Code)
}

// StatusLine 形如 "200 OK", 用于multistatus中的status字段
func (s Status) StatusLine() string {
	return fmt.Sprintf("%d %s", s.Code, s.Text())
}

func (s Status) IsSuccess() bool {
	return s.Code >= 200 && s.Code < 300
}

func (s Status) Error() string {
	return "dav status: " + s.StatusLine()
}

// FromError 将错误映射为Status, 无法映射时返回false
func FromError(err error) (Status, bool) {
	if err == nil {
		return OK, true
	}
	var st Status
	if errors.As(err, &st) {
		return st, true
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return BadRequest, true
	}
	var eerr url.EscapeError
	if errors.As(err, &eerr) {
		return BadRequest, true
	}
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return InsufficientStorage, true
	case errors.Is(err, os.ErrPermission):
		return Forbidden, true
	case errors.Is(err, os.ErrNotExist):
		return Conflict, true
	case errors.Is(err, os.ErrExist):
		return Conflict, true
	}
	return Status{}, false
}
