package config

const SourceFileExt = ".vela"

// BundleFileExt is the extension of emitted typed-program bundles.
const BundleFileExt = ".vlb"

// DefaultMaxIterations bounds the call-site fixpoint loop. The bound, not
// convergence, is what guarantees termination on mutually recursive or
// highly polymorphic programs.
const DefaultMaxIterations = 10

// ConfigFileName is the engine configuration file searched for from the
// working directory upward.
const ConfigFileName = "vela.yaml"

// Operator spellings used by the lowered IR.
const (
	OpAdd    = "+"
	OpSub    = "-"
	OpMul    = "*"
	OpDiv    = "/"
	OpIntDiv = "div"
	OpMod    = "%"
	OpPow    = "^"
)

// Builtin function names the engine treats specially.
const (
	PrintFuncName   = "print"
	LengthFuncName  = "length"
	TypeOfFuncName  = "typeof"
	PushFuncName    = "push"
	ConvertFuncName = "convert"
)
