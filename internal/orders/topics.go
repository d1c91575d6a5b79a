package orders

const (
	TopicOrderCreated  = "order.created"
	TopicOrderDeleted  = "order.deleted"
	TopicStockReserved = "order.stock.reserved"
	TopicStockReleased = "order.stock.released"
	TopicStockAdjusted = "storage.stock.adjusted"
)

// Topics lists everything this service publishes, in one place for consumers.
var Topics = []string{
	TopicOrderCreated,
	TopicOrderDeleted,
	TopicStockReserved,
	TopicStockReleased,
	TopicStockAdjusted,
}

// Partition key = order id (or sku for ledger-only events), keeping events
// for one entity in order.
func PartitionKey(id string) []byte { return []byte(id) }
