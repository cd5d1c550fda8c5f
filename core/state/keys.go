package state

import "encoding/binary"

var (
	intentRecordPrefix   = []byte("corridor/intent/")
	intentSequenceKey    = []byte("corridor/intent-seq")
	ownerIndexPrefix     = []byte("corridor/owner/")
	corridorRecordPrefix = []byte("corridor/registry/")
	feeParamsPrefix      = []byte("corridor/fees/")
	flowPrefix           = []byte("corridor/flow/")
)

func intentKey(id uint64) []byte {
	buf := make([]byte, len(intentRecordPrefix)+8)
	copy(buf, intentRecordPrefix)
	binary.BigEndian.PutUint64(buf[len(intentRecordPrefix):], id)
	return buf
}

func ownerKey(owner [20]byte) []byte {
	return append(append([]byte(nil), ownerIndexPrefix...), owner[:]...)
}

func corridorKey(id [32]byte) []byte {
	return append(append([]byte(nil), corridorRecordPrefix...), id[:]...)
}

func feeParamsKey(id [32]byte) []byte {
	return append(append([]byte(nil), feeParamsPrefix...), id[:]...)
}

func flowKey(id [32]byte) []byte {
	return append(append([]byte(nil), flowPrefix...), id[:]...)
}
