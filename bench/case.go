package bench

import "strings"

// Parameter names used by the cases simbench builds.
const (
	ParamContext     = "context"
	ParamEntityCount = "entities"
	ParamTicks       = "ticks"
	ParamMode        = "mode"
)

// Case is one benchmarked combination of target and parameters.
type Case struct {
	Target Target
	Params []Param
}

// NewCase builds the case for one context at one size.
func NewCase(target Target, context string, entityCount, ticks int, mode string) Case {
	return Case{
		Target: target,
		Params: []Param{
			OpaqueParam(ParamContext, context),
			IntParam(ParamEntityCount, int64(entityCount)),
			IntParam(ParamTicks, int64(ticks)),
			StringParam(ParamMode, mode),
		},
	}
}

// Param returns the named parameter.
func (c Case) Param(name string) (Param, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}

	return Param{}, false
}

// Context returns the context identity of the case, if any.
func (c Case) Context() string {
	p, _ := c.Param(ParamContext)

	return p.Str
}

func (c Case) String() string {
	parts := make([]string, 0, len(c.Params)+1)
	parts = append(parts, c.Target.String())

	for _, p := range c.Params {
		parts = append(parts, p.String())
	}

	return strings.Join(parts, " ")
}
