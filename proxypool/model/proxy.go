package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	delimiter = ","
	numFields = 4 // Address,Port,Country,Organization
)

var (
	ErrMalformedLine = errors.New("malformed line")
	ErrInvalidPort   = errors.New("invalid port")
)

// ProxyRecord 是输入列表中的一个候选代理。解析后不再修改。
type ProxyRecord struct {
	Address      string // IP 或主机名
	Port         uint16
	Country      string
	Organization string
}

// AliveEntry 是写入输出文件的一行。Organization 已被清洗。
type AliveEntry struct {
	Address      string
	Port         uint16
	Country      string
	Organization string
}

// String formats the entry in the same 4-field layout the input uses.
func (e AliveEntry) String() string {
	return strings.Join([]string{
		e.Address,
		strconv.Itoa(int(e.Port)),
		e.Country,
		e.Organization,
	}, delimiter)
}

// ParseLine 把一行 "address,port,country,organization" 解析为 ProxyRecord。
// 字段保持原样，不做 trim。
func ParseLine(line string) (ProxyRecord, error) {
	fields := strings.Split(line, delimiter)
	if len(fields) != numFields {
		return ProxyRecord{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedLine, numFields, len(fields))
	}

	port, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return ProxyRecord{}, fmt.Errorf("%w: %q", ErrInvalidPort, fields[1])
	}

	return ProxyRecord{
		Address:      fields[0],
		Port:         uint16(port),
		Country:      fields[2],
		Organization: fields[3],
	}, nil
}
