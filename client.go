package wukong

import "github.com/arloliu/wukong/types"

// Type aliases for convenience - re-export from types package.
type (
	Logger            = types.Logger
	MetricsCollector  = types.MetricsCollector
	TransportRequest  = types.TransportRequest
	TransportResponse = types.TransportResponse
	Error             = types.Error
	ErrorKind         = types.ErrorKind
	StatusError       = types.StatusError
	NodeError         = types.NodeError
)

// Re-export error kinds for convenience.
const (
	KindConstruction   = types.KindConstruction
	KindDuplicateKey   = types.KindDuplicateKey
	KindNotFound       = types.KindNotFound
	KindTransport      = types.KindTransport
	KindParse          = types.KindParse
	KindMembership     = types.KindMembership
	KindSchema         = types.KindSchema
	KindMissingSection = types.KindMissingSection
	KindConfiguration  = types.KindConfiguration
)
