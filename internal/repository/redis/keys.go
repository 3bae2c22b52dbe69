package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "ingresso:v1"

func KeyEventStats(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s:stats", ns, eventID)
}

func KeyIdemSale(eventID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:sales:%s:%s", ns, eventID, idemKey)
}

func ChannelChanges() string {
	return ns + ":changes"
}
