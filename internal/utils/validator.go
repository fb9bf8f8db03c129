package utils

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
)

var validate, translator = newValidator()

func newValidator() (*validator.Validate, ut.Translator) {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Patch fields validate their inner value; tag them omitnil.
	v.RegisterCustomTypeFunc(optionalValue,
		models.Optional[string]{},
		models.Optional[int]{},
		models.Optional[[]string]{},
		models.Optional[[]models.Friend]{},
		models.Optional[map[string]interface{}]{},
		models.Optional[time.Time]{},
	)

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(v, trans)

	return v, trans
}

func optionalValue(field reflect.Value) interface{} {
	if o, ok := field.Interface().(interface{ ValidationValue() any }); ok {
		return o.ValidationValue()
	}
	return nil
}

// ValidateStruct checks the validate tags of s and returns a validation error
// listing every failed field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		messages := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			messages = append(messages, fe.Translate(translator))
		}
		return apperrors.Validation("%s", strings.Join(messages, "; "))
	}
	return apperrors.Validation("%s", err.Error())
}
