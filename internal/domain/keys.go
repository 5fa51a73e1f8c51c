package domain

// KeyPrefix namespaces every Redis key and index owned by corpusd.
const KeyPrefix = "corpusd:"
