package ttlcache

import (
	"encoding/json"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// 序列化方式
const (
	// SerializerJSON JSON 序列化，可读性好，便于排查
	SerializerJSON = "json"
	// SerializerMsgpack MessagePack 序列化，体积小、速度快
	SerializerMsgpack = "msgpack"
)

// Serializer 条目序列化接口（redis 驱动使用）
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// newSerializer 按名称创建序列化器
func newSerializer(name string) (Serializer, error) {
	switch strings.ToLower(name) {
	case SerializerJSON:
		return jsonSerializer{}, nil
	case SerializerMsgpack:
		return msgpackSerializer{}, nil
	default:
		return nil, ErrSerializerUnknown
	}
}

type jsonSerializer struct{}

func (jsonSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type msgpackSerializer struct{}

func (msgpackSerializer) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackSerializer) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
