package functor

import (
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
)

// The engine list is validated against the configured name; every
// engine is realised as an independently-seeded PCG stream, folding
// the configured seed sequence with the engine's index so distinct
// engine names draw distinct deterministic streams.
var randomEngines = []string{
	"mersenne twister 1998",
	"mersenne twister 2000",
	"minimal standard 1988",
	"minimal standard 1993",
	"ranlux 24",
	"ranlux 48",
	"ranlux 24 base",
	"ranlux 48 base",
	"knuth b",
}

// Random draws from a configured distribution with a deterministic
// seed sequence. Host-only: evaluation order is part of the contract.
type Random struct {
	dist interface{ Rand() float64 }
}

func NewRandom(conf *config.Config) (*Random, error) {
	engine := strings.ToLower(conf.String("engine", "mersenne twister 1998"))
	engineIdx := -1
	for i, name := range randomEngines {
		if name == engine {
			engineIdx = i
			break
		}
	}
	if engineIdx < 0 {
		return nil, fault.New(fault.ConfigurationError,
			"random number engine type %q is not supported", engine)
	}

	seedStr, err := conf.GetString("seed")
	if err != nil {
		return nil, err
	}
	seeds, err := config.SplitUints(seedStr)
	if err != nil {
		return nil, err
	}
	seed := uint64(engineIdx) + 0x9e3779b97f4a7c15
	for _, s := range seeds {
		seed = (seed ^ s) * 0xbf58476d1ce4e5b9
	}
	src := rand.NewSource(seed)

	distName, err := conf.GetString("distribution")
	if err != nil {
		return nil, err
	}
	r := &Random{}
	switch strings.ToLower(distName) {
	case "uniform":
		min, err := conf.GetFloat("min")
		if err != nil {
			return nil, err
		}
		max, err := conf.GetFloat("max")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.Uniform{Min: min, Max: max, Src: src}
	case "exponential":
		lambda, err := conf.GetFloat("lambda")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.Exponential{Rate: lambda, Src: src}
	case "gamma":
		alpha, err := conf.GetFloat("alpha")
		if err != nil {
			return nil, err
		}
		beta, err := conf.GetFloat("beta")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.Gamma{Alpha: alpha, Beta: beta, Src: src}
	case "weibull":
		a, err := conf.GetFloat("a")
		if err != nil {
			return nil, err
		}
		b, err := conf.GetFloat("b")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.Weibull{K: a, Lambda: b, Src: src}
	case "extreme value":
		a, err := conf.GetFloat("a")
		if err != nil {
			return nil, err
		}
		b, err := conf.GetFloat("b")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.GumbelRight{Mu: a, Beta: b, Src: src}
	case "normal":
		mean, err := conf.GetFloat("mean")
		if err != nil {
			return nil, err
		}
		stdDev, err := conf.GetFloat("std dev")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.Normal{Mu: mean, Sigma: stdDev, Src: src}
	case "log normal":
		m, err := conf.GetFloat("m")
		if err != nil {
			return nil, err
		}
		s, err := conf.GetFloat("s")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.LogNormal{Mu: m, Sigma: s, Src: src}
	case "chi squared":
		n, err := conf.GetFloat("n")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.ChiSquared{K: n, Src: src}
	case "cauchy":
		a, err := conf.GetFloat("a")
		if err != nil {
			return nil, err
		}
		b, err := conf.GetFloat("b")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.Cauchy{Mu: a, Gamma: b, Src: src}
	case "fisher f":
		m, err := conf.GetFloat("m")
		if err != nil {
			return nil, err
		}
		n, err := conf.GetFloat("n")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.F{D1: m, D2: n, Src: src}
	case "student t":
		n, err := conf.GetFloat("n")
		if err != nil {
			return nil, err
		}
		r.dist = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n, Src: src}
	default:
		return nil, fault.New(fault.ConfigurationError,
			"distribution type %q is not supported", distName)
	}
	return r, nil
}

func (r *Random) Name() string   { return "Random Value" }
func (r *Random) HostOnly() bool { return true }

func (r *Random) At(t float64, coord [2]float64, nodata float32) float32 {
	return float32(r.dist.Rand())
}

func (r *Random) AtBox(t float64, coord, boxSize [2]float64, nodata float32) float32 {
	return float32(r.dist.Rand())
}
