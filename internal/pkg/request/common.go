package request

// ByIDRequest binds a uuid id path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
