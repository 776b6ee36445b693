package handlers

import (
	"reflect"
	"sync"

	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/gin-gonic/gin/binding"
)

// structValidator lets gin's binding run the shared validator, which knows about decimals and
// request dates and reports violations as *utils.ValidationError.
type structValidator struct{}

func (structValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return utils.ValidateStruct(obj)
}

func (structValidator) Engine() any {
	return utils.Validator()
}

var installValidator sync.Once

func useSharedValidator() {
	installValidator.Do(func() {
		binding.Validator = structValidator{}
	})
}
