package entity

// InvoiceItem línea de la factura. ProductID es una referencia débil al ledger;
// Description es una copia tomada al crear/editar la factura.
type InvoiceItem struct {
	ProductID   string
	Description string
	Quantity    int
}
