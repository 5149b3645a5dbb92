package client

// Client aggregates the external connections a service needs. Fields are
// nil until the corresponding Set* method is called by main.
type Client struct {
	Mongo *MongoClient
	Redis *RedisClient
}

func NewClient() *Client {
	return &Client{}
}
