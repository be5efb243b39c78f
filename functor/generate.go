package functor

import (
	log "github.com/sirupsen/logrus"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/registry"
)

// GenerateField applies the field's configuration block to it: an
// ordered list of `set`, `offset` and `factor` modifiers, each naming
// a functor and optionally a selection, clamp range, integration type
// and box reduction.
func GenerateField(ctx *registry.Context, target *field.Field[float32]) error {
	conf, ok := ctx.Conf.Child(target.Name())
	if !ok {
		return nil
	}
	log.Infof("Generating field %q", target.Name())

	var genErr error
	conf.EachChild(func(key string, modConf *config.Config) {
		if genErr != nil {
			return
		}
		var op Op
		switch key {
		case "set":
			op = Set
		case "offset":
			op = Add
		case "factor":
			op = Multiply
		default:
			return
		}
		genErr = applyModifier(ctx, target, op, modConf)
	})
	return genErr
}

func applyModifier(ctx *registry.Context, target *field.Field[float32],
	op Op, modConf *config.Config) error {
	opName := modConf.String("operation", "mean")
	f, err := New(ctx, modConf, opName)
	if err != nil {
		return err
	}
	fm, err := NewModifier(target.Queue(), target.Mesh(), target.Mapping(),
		modConf, ctx.BasePath)
	if err != nil {
		return err
	}
	fm.Modify(op, f, 0.0, target)
	return nil
}
