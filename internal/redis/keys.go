package redisx

import "fmt"

const ns = "gavelgo:v1"

func KeyHouseModel() string {
	return ns + ":house:model"
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelAreaChanged() string {
	return ns + ":area:changed"
}
