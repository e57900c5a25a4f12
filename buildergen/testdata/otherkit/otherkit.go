package otherkit

type Flag int
