// Package main 启动应用程序
package main

import "github.com/Flapjacck/moxbox/pkg/cmd"

//	@title			moxbox API
//	@version		1.0
//	@description	moxbox 是一个个人自托管的文件存储服务，提供文件上传、下载、移动、回收站与文件夹管理等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	Flapjacck

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
