package token

// Keyword kinds. Allocated contiguously after keywordStart so that
// Kind.IsKeyword is a range check. The set is the complete IEEE 1800-2017
// reserved word list plus the 1step system keyword.
const (
	KwAcceptOn Kind = keywordStart + 1 + iota
	KwAlias
	KwAlways
	KwAlwaysComb
	KwAlwaysFF
	KwAlwaysLatch
	KwAnd
	KwAssert
	KwAssign
	KwAssume
	KwAutomatic
	KwBefore
	KwBegin
	KwBind
	KwBins
	KwBinsOf
	KwBit
	KwBreak
	KwBuf
	KwBufIf0
	KwBufIf1
	KwByte
	KwCase
	KwCaseX
	KwCaseZ
	KwCell
	KwCHandle
	KwChecker
	KwClass
	KwClocking
	KwCmos
	KwConfig
	KwConst
	KwConstraint
	KwContext
	KwContinue
	KwCover
	KwCoverGroup
	KwCoverPoint
	KwCross
	KwDeassign
	KwDefault
	KwDefParam
	KwDesign
	KwDisable
	KwDist
	KwDo
	KwEdge
	KwElse
	KwEnd
	KwEndCase
	KwEndChecker
	KwEndClass
	KwEndClocking
	KwEndConfig
	KwEndFunction
	KwEndGenerate
	KwEndGroup
	KwEndInterface
	KwEndModule
	KwEndPackage
	KwEndPrimitive
	KwEndProgram
	KwEndProperty
	KwEndSpecify
	KwEndSequence
	KwEndTable
	KwEndTask
	KwEnum
	KwEvent
	KwEventually
	KwExpect
	KwExport
	KwExtends
	KwExtern
	KwFinal
	KwFirstMatch
	KwFor
	KwForce
	KwForeach
	KwForever
	KwFork
	KwForkJoin
	KwFunction
	KwGenerate
	KwGenVar
	KwGlobal
	KwHighZ0
	KwHighZ1
	KwIf
	KwIff
	KwIfNone
	KwIgnoreBins
	KwIllegalBins
	KwImplements
	KwImplies
	KwImport
	KwIncDir
	KwInclude
	KwInitial
	KwInOut
	KwInput
	KwInside
	KwInstance
	KwInt
	KwInteger
	KwInterconnect
	KwInterface
	KwIntersect
	KwJoin
	KwJoinAny
	KwJoinNone
	KwLarge
	KwLet
	KwLibList
	KwLibrary
	KwLocal
	KwLocalParam
	KwLogic
	KwLongInt
	KwMacromodule
	KwMatches
	KwMedium
	KwModPort
	KwModule
	KwNand
	KwNegEdge
	KwNetType
	KwNew
	KwNextTime
	KwNmos
	KwNor
	KwNoShowCancelled
	KwNot
	KwNotIf0
	KwNotIf1
	KwNull
	KwOneStep
	KwOr
	KwOutput
	KwPackage
	KwPacked
	KwParameter
	KwPmos
	KwPosEdge
	KwPrimitive
	KwPriority
	KwProgram
	KwProperty
	KwProtected
	KwPull0
	KwPull1
	KwPullDown
	KwPullUp
	KwPulseStyleOnDetect
	KwPulseStyleOnEvent
	KwPure
	KwRand
	KwRandC
	KwRandCase
	KwRandSequence
	KwRcmos
	KwReal
	KwRealTime
	KwRef
	KwReg
	KwRejectOn
	KwRelease
	KwRepeat
	KwRestrict
	KwReturn
	KwRnmos
	KwRpmos
	KwRtran
	KwRtranIf0
	KwRtranIf1
	KwSAlways
	KwSEventually
	KwSNextTime
	KwSUntil
	KwSUntilWith
	KwScalared
	KwSequence
	KwShortInt
	KwShortReal
	KwShowCancelled
	KwSigned
	KwSmall
	KwSoft
	KwSolve
	KwSpecify
	KwSpecParam
	KwStatic
	KwString
	KwStrong
	KwStrong0
	KwStrong1
	KwStruct
	KwSuper
	KwSupply0
	KwSupply1
	KwSyncAcceptOn
	KwSyncRejectOn
	KwTable
	KwTagged
	KwTask
	KwThis
	KwThroughout
	KwTime
	KwTimePrecision
	KwTimeUnit
	KwTran
	KwTranIf0
	KwTranIf1
	KwTri
	KwTri0
	KwTri1
	KwTriAnd
	KwTriOr
	KwTriReg
	KwType
	KwTypedef
	KwUnion
	KwUnique
	KwUnique0
	KwUnsigned
	KwUntil
	KwUntilWith
	KwUntyped
	KwUse
	KwUWire
	KwVar
	KwVectored
	KwVirtual
	KwVoid
	KwWait
	KwWaitOrder
	KwWAnd
	KwWeak
	KwWeak0
	KwWeak1
	KwWhile
	KwWildcard
	KwWire
	KwWith
	KwWithin
	KwWOr
	KwXnor
	KwXor

	keywordEnd
)

var keywords = map[string]Kind{
	"accept_on":           KwAcceptOn,
	"alias":               KwAlias,
	"always":              KwAlways,
	"always_comb":         KwAlwaysComb,
	"always_ff":           KwAlwaysFF,
	"always_latch":        KwAlwaysLatch,
	"and":                 KwAnd,
	"assert":              KwAssert,
	"assign":              KwAssign,
	"assume":              KwAssume,
	"automatic":           KwAutomatic,
	"before":              KwBefore,
	"begin":               KwBegin,
	"bind":                KwBind,
	"bins":                KwBins,
	"binsof":              KwBinsOf,
	"bit":                 KwBit,
	"break":               KwBreak,
	"buf":                 KwBuf,
	"bufif0":              KwBufIf0,
	"bufif1":              KwBufIf1,
	"byte":                KwByte,
	"case":                KwCase,
	"casex":               KwCaseX,
	"casez":               KwCaseZ,
	"cell":                KwCell,
	"chandle":             KwCHandle,
	"checker":             KwChecker,
	"class":               KwClass,
	"clocking":            KwClocking,
	"cmos":                KwCmos,
	"config":              KwConfig,
	"const":               KwConst,
	"constraint":          KwConstraint,
	"context":             KwContext,
	"continue":            KwContinue,
	"cover":               KwCover,
	"covergroup":          KwCoverGroup,
	"coverpoint":          KwCoverPoint,
	"cross":               KwCross,
	"deassign":            KwDeassign,
	"default":             KwDefault,
	"defparam":            KwDefParam,
	"design":              KwDesign,
	"disable":             KwDisable,
	"dist":                KwDist,
	"do":                  KwDo,
	"edge":                KwEdge,
	"else":                KwElse,
	"end":                 KwEnd,
	"endcase":             KwEndCase,
	"endchecker":          KwEndChecker,
	"endclass":            KwEndClass,
	"endclocking":         KwEndClocking,
	"endconfig":           KwEndConfig,
	"endfunction":         KwEndFunction,
	"endgenerate":         KwEndGenerate,
	"endgroup":            KwEndGroup,
	"endinterface":        KwEndInterface,
	"endmodule":           KwEndModule,
	"endpackage":          KwEndPackage,
	"endprimitive":        KwEndPrimitive,
	"endprogram":          KwEndProgram,
	"endproperty":         KwEndProperty,
	"endspecify":          KwEndSpecify,
	"endsequence":         KwEndSequence,
	"endtable":            KwEndTable,
	"endtask":             KwEndTask,
	"enum":                KwEnum,
	"event":               KwEvent,
	"eventually":          KwEventually,
	"expect":              KwExpect,
	"export":              KwExport,
	"extends":             KwExtends,
	"extern":              KwExtern,
	"final":               KwFinal,
	"first_match":         KwFirstMatch,
	"for":                 KwFor,
	"force":               KwForce,
	"foreach":             KwForeach,
	"forever":             KwForever,
	"fork":                KwFork,
	"forkjoin":            KwForkJoin,
	"function":            KwFunction,
	"generate":            KwGenerate,
	"genvar":              KwGenVar,
	"global":              KwGlobal,
	"highz0":              KwHighZ0,
	"highz1":              KwHighZ1,
	"if":                  KwIf,
	"iff":                 KwIff,
	"ifnone":              KwIfNone,
	"ignore_bins":         KwIgnoreBins,
	"illegal_bins":        KwIllegalBins,
	"implements":          KwImplements,
	"implies":             KwImplies,
	"import":              KwImport,
	"incdir":              KwIncDir,
	"include":             KwInclude,
	"initial":             KwInitial,
	"inout":               KwInOut,
	"input":               KwInput,
	"inside":              KwInside,
	"instance":            KwInstance,
	"int":                 KwInt,
	"integer":             KwInteger,
	"interconnect":        KwInterconnect,
	"interface":           KwInterface,
	"intersect":           KwIntersect,
	"join":                KwJoin,
	"join_any":            KwJoinAny,
	"join_none":           KwJoinNone,
	"large":               KwLarge,
	"let":                 KwLet,
	"liblist":             KwLibList,
	"library":             KwLibrary,
	"local":               KwLocal,
	"localparam":          KwLocalParam,
	"logic":               KwLogic,
	"longint":             KwLongInt,
	"macromodule":         KwMacromodule,
	"matches":             KwMatches,
	"medium":              KwMedium,
	"modport":             KwModPort,
	"module":              KwModule,
	"nand":                KwNand,
	"negedge":             KwNegEdge,
	"nettype":             KwNetType,
	"new":                 KwNew,
	"nexttime":            KwNextTime,
	"nmos":                KwNmos,
	"nor":                 KwNor,
	"noshowcancelled":     KwNoShowCancelled,
	"not":                 KwNot,
	"notif0":              KwNotIf0,
	"notif1":              KwNotIf1,
	"null":                KwNull,
	"1step":               KwOneStep,
	"or":                  KwOr,
	"output":              KwOutput,
	"package":             KwPackage,
	"packed":              KwPacked,
	"parameter":           KwParameter,
	"pmos":                KwPmos,
	"posedge":             KwPosEdge,
	"primitive":           KwPrimitive,
	"priority":            KwPriority,
	"program":             KwProgram,
	"property":            KwProperty,
	"protected":           KwProtected,
	"pull0":               KwPull0,
	"pull1":               KwPull1,
	"pulldown":            KwPullDown,
	"pullup":              KwPullUp,
	"pulsestyle_ondetect": KwPulseStyleOnDetect,
	"pulsestyle_onevent":  KwPulseStyleOnEvent,
	"pure":                KwPure,
	"rand":                KwRand,
	"randc":               KwRandC,
	"randcase":            KwRandCase,
	"randsequence":        KwRandSequence,
	"rcmos":               KwRcmos,
	"real":                KwReal,
	"realtime":            KwRealTime,
	"ref":                 KwRef,
	"reg":                 KwReg,
	"reject_on":           KwRejectOn,
	"release":             KwRelease,
	"repeat":              KwRepeat,
	"restrict":            KwRestrict,
	"return":              KwReturn,
	"rnmos":               KwRnmos,
	"rpmos":               KwRpmos,
	"rtran":               KwRtran,
	"rtranif0":            KwRtranIf0,
	"rtranif1":            KwRtranIf1,
	"s_always":            KwSAlways,
	"s_eventually":        KwSEventually,
	"s_nexttime":          KwSNextTime,
	"s_until":             KwSUntil,
	"s_until_with":        KwSUntilWith,
	"scalared":            KwScalared,
	"sequence":            KwSequence,
	"shortint":            KwShortInt,
	"shortreal":           KwShortReal,
	"showcancelled":       KwShowCancelled,
	"signed":              KwSigned,
	"small":               KwSmall,
	"soft":                KwSoft,
	"solve":               KwSolve,
	"specify":             KwSpecify,
	"specparam":           KwSpecParam,
	"static":              KwStatic,
	"string":              KwString,
	"strong":              KwStrong,
	"strong0":             KwStrong0,
	"strong1":             KwStrong1,
	"struct":              KwStruct,
	"super":               KwSuper,
	"supply0":             KwSupply0,
	"supply1":             KwSupply1,
	"sync_accept_on":      KwSyncAcceptOn,
	"sync_reject_on":      KwSyncRejectOn,
	"table":               KwTable,
	"tagged":              KwTagged,
	"task":                KwTask,
	"this":                KwThis,
	"throughout":          KwThroughout,
	"time":                KwTime,
	"timeprecision":       KwTimePrecision,
	"timeunit":            KwTimeUnit,
	"tran":                KwTran,
	"tranif0":             KwTranIf0,
	"tranif1":             KwTranIf1,
	"tri":                 KwTri,
	"tri0":                KwTri0,
	"tri1":                KwTri1,
	"triand":              KwTriAnd,
	"trior":               KwTriOr,
	"trireg":              KwTriReg,
	"type":                KwType,
	"typedef":             KwTypedef,
	"union":               KwUnion,
	"unique":              KwUnique,
	"unique0":             KwUnique0,
	"unsigned":            KwUnsigned,
	"until":               KwUntil,
	"until_with":          KwUntilWith,
	"untyped":             KwUntyped,
	"use":                 KwUse,
	"uwire":               KwUWire,
	"var":                 KwVar,
	"vectored":            KwVectored,
	"virtual":             KwVirtual,
	"void":                KwVoid,
	"wait":                KwWait,
	"wait_order":          KwWaitOrder,
	"wand":                KwWAnd,
	"weak":                KwWeak,
	"weak0":               KwWeak0,
	"weak1":               KwWeak1,
	"while":               KwWhile,
	"wildcard":            KwWildcard,
	"wire":                KwWire,
	"with":                KwWith,
	"within":              KwWithin,
	"wor":                 KwWOr,
	"xnor":                KwXnor,
	"xor":                 KwXor,
}

var keywordText = func() map[Kind]string {
	m := make(map[Kind]string, len(keywords))
	for text, kind := range keywords {
		m[kind] = text
	}
	return m
}()

// LookupKeyword resolves an identifier spelling to its keyword kind.
// Keywords are case sensitive; only the lowercase spellings are reserved.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// Keywords exposes the full spelling -> kind table. The map is shared;
// callers must not modify it.
func Keywords() map[string]Kind {
	return keywords
}
