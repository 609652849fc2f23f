package kv

// The schema will define how to store and retrieve data from the db.
// Slash records carry the owning vault id and a big-endian epoch in
// their keys so a cursor scan returns one vault's records in epoch
// order.
var (
	vaultsBucket        = []byte("vaults")
	slashRecordsBucket  = []byte("slash-records")
	operatorsBucket     = []byte("operators")
	networksBucket      = []byte("networks")
	optInsBucket        = []byte("opt-ins")
	chainMetadataBucket = []byte("chain-metadata")

	// Metadata keys.
	genesisTimeKey    = []byte("genesis-time")
	configNameKey     = []byte("config-name")
	protocolRecordKey = []byte("protocol-record")
)
