package docstore

// Имена атрибутов документа заказа.
const (
	AttrID            = "Id"
	AttrCode          = "Code"
	AttrCustomerID    = "CustomerId"
	AttrCreatedAt     = "CreatedAt"
	AttrStatus        = "Status"
	AttrPaymentStatus = "PaymentStatus"
	AttrTotalPrice    = "TotalPrice"
	AttrSource        = "Source"
	AttrItems         = "Items"

	itemID                = "id"
	itemProductID         = "productId"
	itemQuantity          = "quantity"
	itemBasePrice         = "basePrice"
	itemFinalPrice        = "finalPrice"
	itemProductName       = "productName"
	itemCategory          = "category"
	itemObservation       = "observation"
	itemCustomIngredients = "CustomIngredients"

	ingredientID     = "id"
	ingredientBaseID = "ingredientId"
	ingredientName   = "name"
	ingredientPrice  = "price"
	ingredientQty    = "quantity"
)

// Имена атрибутов документа товара.
const (
	attrProductName        = "Name"
	attrProductCategory    = "Category"
	attrProductPrice       = "Price"
	attrProductDescription = "Description"
	attrProductIngredients = "Ingredients"
)

// Имена вторичных индексов таблицы заказов.
const (
	IndexCustomerCreatedAt = "CustomerIdCreatedAtIndex"
	IndexStatusCreatedAt   = "StatusCreatedAtIndex"
	IndexCode              = "CodeIndex"
)

// OrdersTable: схема коллекции заказов.
var OrdersTable = TableSchema{
	Name:       "orders",
	PrimaryKey: AttrID,
	Indexes: []IndexDefinition{
		{Name: IndexCustomerCreatedAt, PartitionKey: AttrCustomerID, SortKey: AttrCreatedAt},
		{Name: IndexStatusCreatedAt, PartitionKey: AttrStatus, SortKey: AttrCreatedAt},
		{Name: IndexCode, PartitionKey: AttrCode, SortKey: AttrID},
	},
}

// ProductsTable: схема коллекции каталога.
var ProductsTable = TableSchema{
	Name:       "products",
	PrimaryKey: AttrID,
}

// Tables перечисляет все коллекции сервиса.
func Tables() []TableSchema {
	return []TableSchema{OrdersTable, ProductsTable}
}
