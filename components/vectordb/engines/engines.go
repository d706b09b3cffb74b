package engines

import (
	"github.com/krishidhan/sahayak/components/vectordb/engines/chromem"
	"github.com/krishidhan/sahayak/components/vectordb/engines/memory"
	"github.com/krishidhan/sahayak/components/vectordb/engines/milvus"
)

var (
	FromChromem = chromem.New
	FromMemory  = memory.New
	FromMilvus  = milvus.New
)
