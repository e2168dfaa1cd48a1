// Package dsgobj implements the concrete DSG wire objects built on top
// of the generic named-object model in pkg/object: the contract,
// contract-state, challenge, proof and query payloads, plus the signed
// transport envelope they travel in between consumer and miner.
package dsgobj

// obj_type discriminators. Standard-category range (below 0x8000) per
// pkg/object.CategoryOf, since none of these are core protocol types or
// dec-app-defined types.
const (
	ObjTypeContract       uint16 = 0x0100
	ObjTypeContractState  uint16 = 0x0101
	ObjTypeChallenge      uint16 = 0x0102
	ObjTypeProof          uint16 = 0x0103
	ObjTypeDataSourceStub uint16 = 0x0104
)

// StorageKind selects the data-source transform plan for a contract
// (spec.md §4.4).
type StorageKind uint8

const (
	StorageCache StorageKind = iota
	StorageBackup
)

func (k StorageKind) String() string {
	if k == StorageBackup {
		return "Backup"
	}
	return "Cache"
}

// StateKind enumerates the contract state machine's node values
// (spec.md §3: "Initial -> DataSourceChanged -> DataSourcePrepared ->
// DataSourceSyncing -> DataSourceStored -> (DataSourceChanged |
// ContractExecuted | ContractBroken)").
type StateKind uint8

const (
	StateInitial StateKind = iota
	StateDataSourceChanged
	StateDataSourcePrepared
	StateDataSourceSyncing
	StateDataSourceStored
	StateContractExecuted
	StateContractBroken
)

var stateKindNames = map[StateKind]string{
	StateInitial:            "Initial",
	StateDataSourceChanged:  "DataSourceChanged",
	StateDataSourcePrepared: "DataSourcePrepared",
	StateDataSourceSyncing:  "DataSourceSyncing",
	StateDataSourceStored:   "DataSourceStored",
	StateContractExecuted:   "ContractExecuted",
	StateContractBroken:     "ContractBroken",
}

func (k StateKind) String() string {
	if n, ok := stateKindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// IsTerminal reports whether a state has no further transitions.
func (k StateKind) IsTerminal() bool {
	return k == StateContractExecuted || k == StateContractBroken
}
