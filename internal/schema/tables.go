package schema

// DomainApplication is the domain label of every table in this package.
const DomainApplication = "application"

// DefaultTablePrefix prefixes every table name.
const DefaultTablePrefix = "app_"

// Base names, before prefix and partition suffix.
const (
	GlobalIDBase  = "global_id"
	UserInfoBase  = "userinfo"
	UIDOpenIDBase = "uid_openid"
)

// Column names shared with the record layer.
const (
	ColUID        = "uid"
	ColCreateTime = "create_time"

	ColNickname   = "nickname"
	ColGender     = "gender"
	ColSignature  = "usersig"
	ColRegion     = "userarea"
	ColRegTime    = "regtime"
	ColEnterCount = "entercount"
	ColEnterTime  = "entertme"

	ColID     = "id"
	ColOpenID = "openid"
	ColPlat   = "plat"
)

// Column sizes, enforced by the record layer before writing.
const (
	NicknameSize  = 50
	SignatureSize = 100
	RegionSize    = 100
	OpenIDSize    = 32
)

// GlobalID is the unpartitioned identity counter table.
func GlobalID(prefix string) Template {
	return Template{
		BaseName: prefix + GlobalIDBase,
		Label:    "global uid counter",
		Domain:   DomainApplication,
		Columns: []Column{
			{Name: ColUID, Label: "uid", Type: TypeUint, PrimaryKey: true, AutoIncrement: true},
			{Name: ColCreateTime, Label: "created at", Type: TypeUint},
		},
	}
}

// UserInfo is the profile template, split into partitions tables.
func UserInfo(prefix string, partitions int) Template {
	return Template{
		BaseName: prefix + UserInfoBase,
		Label:    "user info",
		Domain:   DomainApplication,
		Columns: []Column{
			{Name: ColUID, Label: "uid", Type: TypeUint, PrimaryKey: true},
			{Name: ColNickname, Label: "nickname", Type: TypeVarchar, Size: NicknameSize},
			{Name: ColGender, Label: "gender", Type: TypeSmallUint, Default: "2", HasDefault: true},
			{Name: ColSignature, Label: "signature", Type: TypeVarchar, Size: SignatureSize, Default: "0", HasDefault: true},
			{Name: ColRegion, Label: "region", Type: TypeVarchar, Size: RegionSize, Default: "0", HasDefault: true},
			{Name: ColRegTime, Label: "registered at", Type: TypeUint},
			{Name: ColEnterCount, Label: "login count", Type: TypeUint},
			{Name: ColEnterTime, Label: "last login at", Type: TypeUint},
		},
		Partitions: partitions,
	}
}

// UIDOpenID maps uid = openid + plat, partitioned like UserInfo.
func UIDOpenID(prefix string, partitions int) Template {
	return Template{
		BaseName: prefix + UIDOpenIDBase,
		Label:    "uid to openid and plat",
		Domain:   DomainApplication,
		Columns: []Column{
			{Name: ColID, Label: "id", Type: TypeUint, PrimaryKey: true, AutoIncrement: true},
			{Name: ColUID, Label: "uid", Type: TypeUint, Unique: true},
			{Name: ColOpenID, Label: "third party user id", Type: TypeVarchar, Size: OpenIDSize},
			{Name: ColPlat, Label: "third party platform", Type: TypeSmallUint},
			{Name: ColCreateTime, Label: "created at", Type: TypeUint},
		},
		Uniques:    []Unique{{Columns: []string{ColOpenID, ColPlat}}},
		Partitions: partitions,
	}
}

// Application registers every table of the application domain.
func Application(prefix string, partitions int) (*Registry, error) {
	reg := NewRegistry()
	for _, t := range []Template{
		GlobalID(prefix),
		UserInfo(prefix, partitions),
		UIDOpenID(prefix, partitions),
	} {
		if err := reg.RegisterTemplate(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
