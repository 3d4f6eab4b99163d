package request

type UpdateOrderStatus struct {
	Status string `validate:"required,oneof=confirmed processing shipped delivered cancelled" json:"status"`
}
