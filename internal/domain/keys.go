package domain

// KeyPrefix namespaces every key synapse writes to the store.
const KeyPrefix = "synapse:"

// ItemPrefix is the key prefix of stored items; keys are ItemPrefix + "{user_id}:{id}".
const ItemPrefix = KeyPrefix + "item:"

// DefaultIndexName is the FT index over stored items.
const DefaultIndexName = KeyPrefix + "item:idx"
