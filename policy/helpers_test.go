package policy_test

import (
	"bytes"
	"fmt"

	"github.com/justapithecus/readsim/types"
)

func makePair(i, readLen int) *types.ReadPair {
	seq := bytes.Repeat([]byte("A"), readLen)
	qual := bytes.Repeat([]byte{30}, readLen)
	return &types.ReadPair{
		Index:   i,
		Forward: types.Read{ID: fmt.Sprintf("g_%d/1", i), Seq: seq, Qual: qual, Origin: types.Origin{RefID: "g"}},
		Reverse: types.Read{ID: fmt.Sprintf("g_%d/2", i), Seq: seq, Qual: qual, Origin: types.Origin{RefID: "g"}},
	}
}
