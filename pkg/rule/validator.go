// Package rule 封装 go-playground/validator，统一请求级校验入口，
// 并注册 moxbox 自有的路径类校验规则.
package rule

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
)

var (
	inst *validator.Validate
	once sync.Once
)

// lazyInit 初始化全局 validator（幂等）.优先复用 gin binding 的引擎，
// 这样 ShouldBind 也会执行 rule 标签；复用失败时退化为独立实例.
func lazyInit() {
	once.Do(func() {
		if engine := binding.Validator.Engine(); engine != nil {
			if v, ok := engine.(*validator.Validate); ok {
				inst = v
			}
		}
		if inst == nil {
			inst = validator.New()
		}
		inst.SetTagName("rule")
		registerBuiltins(inst)
	})
}

// registerBuiltins 注册领域校验规则.
//
//   - relpath: 相对存储根的文件夹路径，空串视为根目录；拒绝穿越、
//     超长、超深与非法字符，口径与路径清洗完全一致.
func registerBuiltins(v *validator.Validate) {
	_ = v.RegisterValidation("relpath", func(fl validator.FieldLevel) bool {
		_, err := sanitize.Clean(fl.Field().String())

		return err == nil
	})
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 代理 RegisterValidation，确保已初始化.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// RegisterAlias 包装 RegisterAlias，便于注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}

// ValidateStruct 对结构体执行完整校验，返回原始 error（可用 Errors 解析）.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("abc", "required,email").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// ValidationErrors 是格式化后的验证错误字典，键为字段名，值为可读错误信息.
type ValidationErrors map[string]string

// Errors 把 validator 的错误摊平成字段到消息的字典，供接口层直接返回.
// 非校验类错误（如绑定阶段的类型错误）归到 "request" 键下.
func Errors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	out := ValidationErrors{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["request"] = err.Error()

		return out
	}

	for _, fe := range verrs {
		out[fe.Field()] = messageFor(fe)
	}

	return out
}

// messageFor 渲染单条校验失败的可读信息.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email"
	case "relpath":
		return "must be a valid relative folder path"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	default:
		return "failed rule: " + fe.Tag()
	}
}
