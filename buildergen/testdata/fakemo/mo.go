package mo

type Option[T any] struct{}

type Either[L any, R any] struct{}

type Result[T any] struct{}
