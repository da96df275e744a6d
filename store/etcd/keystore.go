package etcd

import (
	"context"
	"fmt"
	"path"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kochabx/docvault/core/crypto/keypair"
)

// DefaultKeyPrefix 密钥在 etcd 中的默认前缀
const DefaultKeyPrefix = "/docvault/keys"

// KeyStore 将密钥对保存在 etcd 中，写入只在键不存在时成功
type KeyStore struct {
	etcd   *Etcd
	prefix string
}

var _ keypair.KeyStore = (*KeyStore)(nil)

// NewKeyStore 创建以 prefix 为前缀的密钥存储
func (e *Etcd) NewKeyStore(prefix string) *KeyStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &KeyStore{etcd: e, prefix: prefix}
}

func (ks *KeyStore) key(name string) string {
	return path.Join(ks.prefix, name)
}

// Exists 检查密钥是否存在
func (ks *KeyStore) Exists(ctx context.Context, name string) (bool, error) {
	if ks.etcd.Client == nil {
		return false, ErrEtcdNotInitialized
	}

	resp, err := ks.etcd.Client.Get(ctx, ks.key(name), clientv3.WithCountOnly())
	if err != nil {
		return false, err
	}
	return resp.Count > 0, nil
}

// Load 读取密钥
func (ks *KeyStore) Load(ctx context.Context, name string) ([]byte, error) {
	if ks.etcd.Client == nil {
		return nil, ErrEtcdNotInitialized
	}

	key := ks.key(name)
	resp, err := ks.etcd.Client.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("%w: %s", keypair.ErrKeyNotFound, key)
	}
	return resp.Kvs[0].Value, nil
}

// Save 仅在键不存在时写入，多个实例同时启动时只有一个能写入成功
func (ks *KeyStore) Save(ctx context.Context, name string, data []byte) error {
	if ks.etcd.Client == nil {
		return ErrEtcdNotInitialized
	}

	key := ks.key(name)
	cmp := clientv3.Compare(clientv3.CreateRevision(key), "=", 0)
	put := clientv3.OpPut(key, string(data))

	resp, err := ks.etcd.Client.Txn(ctx).If(cmp).Then(put).Commit()
	if err != nil {
		return err
	}
	if !resp.Succeeded {
		return fmt.Errorf("%w: %s", keypair.ErrKeyExists, key)
	}
	return nil
}
