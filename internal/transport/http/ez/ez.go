// Package ez 把 "绑定入参 → 调用 → 统一信封" 收敛成一次注册
package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"go-gin-storefront/internal/domain"
	mdw "go-gin-storefront/internal/transport/http/middleware"
	resp "go-gin-storefront/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ { return EZ{g: g, log: log} }

// Group 在当前分组下再挂一层中间件（例如 RequireAdmin）
func (e EZ) Group(path string, handlers ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, handlers...), log: e.log}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr 传输层自己的错误（参数格式等），不属于领域错误
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: http.StatusBadRequest, Msg: msg} }

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method string // GET / POST / PUT / DELETE
	Path   string
	Binder Binder
	// Status 成功时的 HTTP 状态码，默认 200
	Status  int
	Handler func(c *gin.Context, p domain.Principal, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			e.fail(c, bindError(bindErr))
			return
		}

		// 未挂 gate 的路由拿到的是零值 Principal
		p, _ := mdw.PrincipalFrom(c)
		out, err := a.Handler(c, p, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		resp.Success(c, status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

func init() {
	// 校验错误里用 json/form 字段名，不暴露 Go 结构体名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// bindError 绑定失败只回字段级的简短说明，原始错误留在 Err 里
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &AErr{Code: http.StatusRequestEntityTooLarge, Msg: "request body too large", Err: err}
	}
	return &AErr{Code: http.StatusBadRequest, Msg: bindMessage(err), Err: err}
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return strings.Join(msgs, "; ")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field + " has the wrong type"
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "malformed JSON body"
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return "invalid number " + strconv.Quote(numErr.Num)
	}
	return "invalid request"
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "url":
		return fe.Field() + " must be a valid URL"
	default:
		return fe.Field() + " is invalid"
	}
}

// StatusOf 领域错误 → HTTP 状态码
func StatusOf(err error) int {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae.Code
	}
	switch domain.KindOf(err) {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidInput, domain.KindInvalidTransition:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (e EZ) fail(c *gin.Context, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		// 内部错误只记日志，不把细节回给调用方
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		resp.Abort(c, status, "internal error")
		return
	}
	resp.Abort(c, status, err.Error())
}
