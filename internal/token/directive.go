package token

// DirectiveKind identifies which compiler directive a Directive token
// spells. MacroUsage covers `NAME references that are not a known
// directive keyword.
type DirectiveKind uint8

const (
	DirUnknown DirectiveKind = iota
	DirDefine
	DirUndef
	DirUndefineAll
	DirIfDef
	DirIfNDef
	DirElsIf
	DirElse
	DirEndIf
	DirInclude
	DirLine
	DirTimescale
	DirResetAll
	DirDefaultNetType
	DirBeginKeywords
	DirEndKeywords
	DirCellDefine
	DirEndCellDefine
	DirUnconnectedDrive
	DirNoUnconnectedDrive
	DirPragma
	DirMacroUsage
)

var directiveNames = map[string]DirectiveKind{
	"define":              DirDefine,
	"undef":               DirUndef,
	"undefineall":         DirUndefineAll,
	"ifdef":               DirIfDef,
	"ifndef":              DirIfNDef,
	"elsif":               DirElsIf,
	"else":                DirElse,
	"endif":               DirEndIf,
	"include":             DirInclude,
	"line":                DirLine,
	"timescale":           DirTimescale,
	"resetall":            DirResetAll,
	"default_nettype":     DirDefaultNetType,
	"begin_keywords":      DirBeginKeywords,
	"end_keywords":        DirEndKeywords,
	"celldefine":          DirCellDefine,
	"endcelldefine":       DirEndCellDefine,
	"unconnected_drive":   DirUnconnectedDrive,
	"nounconnected_drive": DirNoUnconnectedDrive,
	"pragma":              DirPragma,
}

// LookupDirective classifies a directive name (without the leading `).
// Unrecognized names are macro usages.
func LookupDirective(name string) DirectiveKind {
	if name == "" {
		return DirUnknown
	}
	if k, ok := directiveNames[name]; ok {
		return k
	}
	return DirMacroUsage
}
